package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"elevatr.app/predictor/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
