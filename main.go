// Command skillflow parses and runs the workflows embedded in Markdown skill
// documents.
package main

import "skillflow/internal/cli"

func main() {
	cli.Execute()
}
