package main

import "github.com/campushq/internship-portal/cmd"

func main() {
	cmd.Execute()
}
