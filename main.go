package main

import (
	"log"
	"os"

	"github.com/Nexus-Mods/Vortex-Backend/cmd"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cmd.Execute()
}
