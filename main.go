package main

import "github.com/lukman83/rakurank/cmd"

func main() {
	cmd.Execute()
}
