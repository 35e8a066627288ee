package browsersniff

import "testing"

func TestParseFamilies(t *testing.T) {
	cases := []struct {
		name   string
		ua     string
		family string
	}{
		{
			name:   "chrome",
			ua:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
			family: "Chrome",
		},
		{
			name:   "firefox",
			ua:     "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
			family: "Firefox",
		},
		{
			name:   "edge",
			ua:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36 Edg/115.0.1901.183",
			family: "Edge",
		},
		{
			name:   "internet explorer",
			ua:     "Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko",
			family: "Internet Explorer",
		},
		{
			name:   "safari",
			ua:     "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
			family: "Safari",
		},
		{
			name:   "unknown",
			ua:     "SomeCustomBot/1.0",
			family: "Unknown",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.ua)
			if got.Family != tc.family {
				t.Fatalf("Parse(%q).Family = %q, want %q", tc.ua, got.Family, tc.family)
			}
		})
	}
}

func TestParseVersionExtraction(t *testing.T) {
	ua := Parse("Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0")
	if ua.Version != "115.0" {
		t.Fatalf("expected version 115.0, got %q", ua.Version)
	}
}

func TestIsUnsupportedMatchesConfiguredFamily(t *testing.T) {
	set := NormalizeList([]string{"internet explorer", "Opera"})

	ie := Parse("Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko")
	if !IsUnsupported(ie, set) {
		t.Fatal("expected Internet Explorer to be unsupported")
	}

	chrome := Parse("Mozilla/5.0 Chrome/115.0.0.0 Safari/537.36")
	if IsUnsupported(chrome, set) {
		t.Fatal("expected Chrome not to be unsupported")
	}
}

func TestNormalizeListIgnoresUnknownNames(t *testing.T) {
	set := NormalizeList([]string{"netscape navigator"})
	if len(set) != 0 {
		t.Fatalf("expected no matches for an unrecognized family name, got %v", set)
	}
}
