package main

import "github.com/abhisek/vocabdrill/cmd"

func main() {
	cmd.Execute()
}
