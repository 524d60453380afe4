package main

import "github.com/timewarden/timewarden/cmd/twctl/arg"

func main() {
	arg.Execute()
}
