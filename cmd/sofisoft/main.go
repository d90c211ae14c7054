// Command sofisoft is the command-line admin client for the SofiSoft retail backend.
package main

import "github.com/SofiSoft/sofisoft-admin/cmd/sofisoft/cmd"

func main() {
	cmd.Execute()
}
