package main

import "mspro-labs/dining-buddy/cmd"

func main() {
	cmd.Execute()
}
