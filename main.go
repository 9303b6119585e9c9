package main

import (
	"github.com/shouni/dreamhouse-image-kit/cmd"
)

func main() {
	cmd.Execute()
}
