package main

import (
	"fmt"
	osx "os"
)

func main() {
	fmt.Println("start")
	osx.Exit(1) // want "direct call to os.Exit in main function"

	defer func() {
		osx.Exit(2)
	}()
}

func helper() {
	osx.Exit(3)
}
