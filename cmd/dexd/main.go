package main

import (
	"github.com/LeJamon/goDEXd/internal/cli"
)

func main() {
	cli.Execute()
}
