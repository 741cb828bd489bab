package main

import (
	"log"
	"os"

	"github.com/viant/dashnex/internal/cmd"
	_ "github.com/viant/scy/kms/blowfish"
)

func main() {
	if err := cmd.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
