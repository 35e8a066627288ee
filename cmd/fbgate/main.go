// Command fbgate supervises the native file-browsing server binary.
package main

import "github.com/thevickypedia/fbgate/cmd/fbgate/cmd"

func main() {
	cmd.Execute()
}
