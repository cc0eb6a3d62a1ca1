package main

import "github.com/amit1797/Eduadmin-sub000/cmd"

func main() {
	cmd.Execute()
}
