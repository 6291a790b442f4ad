// +build linux darwin freebsd

package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coredump-io/tinyos/kernel"
)

func sigHandler(k *kernel.Kernel) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	signal.Ignore(syscall.SIGPIPE)

	for range ch {
		dumpProcessTable(k)
	}
}

func dumpProcessTable(k *kernel.Kernel) {
	fid, err := k.OpenInfo()
	if err != nil {
		log.Printf("tinyosd: OpenInfo failed: %v", err)
		return
	}
	defer k.Close(fid)

	for {
		info, err := k.ReadInfo(fid)
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Printf("tinyosd: ReadInfo failed: %v", err)
			return
		}
		log.Printf("tinyosd: pid=%d ppid=%d alive=%v threads=%d argl=%d",
			info.Pid, info.ParentPid, info.Alive, info.ThreadCount, info.ArgLen)
	}
}
