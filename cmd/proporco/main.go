package main

import (
	_ "time/tzdata"

	"github.com/mamadbah2/proporco/internal/cli"
)

func main() {
	cli.Execute()
}
