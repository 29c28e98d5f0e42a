package main

import "reader-sync/cmd"

func main() {
	cmd.Execute()
}
