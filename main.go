package main

import "github.com/tanq16/pdfpull/cmd"

func main() {
	cmd.Execute()
}
