package main

import (
	"log"

	"github.com/psbppwb/penilaian/core"
)

func main() {
	conf := core.NewConfig()
	log.Printf("devserver: serving stub API on :8000 (env %s)", conf.Env)

	app := NewServer(&Options{
		Addr: ":8000",
		Conf: conf,
	})
	app.Start()
}
