package main

import (
	"log"
	"time"

	"github.com/coredump-io/tinyos/kernel"
)

// VERSION is injected by build flags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	k := kernel.Boot()
	go sigHandler(k)

	workerTask := func(self *kernel.Thread, argl int, args []byte) int {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for i := 0; i < 3; i++ {
			<-ticker.C
		}
		return 0
	}

	if pid := k.Exec(nil, workerTask, 0, nil); pid == kernel.NoProc {
		log.Fatal("tinyosd: failed to exec init process")
	}

	log.Printf("tinyosd: running, pid 1 alive; send SIGUSR1 for a process-table dump")
	select {}
}
