package main

import "github.com/Lllllllleong/pdfpageflow/internal/cli"

func main() {
	cli.Execute()
}
