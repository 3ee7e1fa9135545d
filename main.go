// main.go - Entry point
package main

import "github.com/valpere/geolayers/cmd"

func main() {
	cmd.Execute()
}
