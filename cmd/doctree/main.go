package main

import "github.com/mvp-joe/doctree/internal/cli"

func main() {
	cli.Execute()
}
