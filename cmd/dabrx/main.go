/*
NAME
  main.go

DESCRIPTION
  dabrx is a command line DAB/DAB+ receiver: it replays raw OFDM symbol
  buffers from a capture file (live tuner input is not supported), decodes the
  FIC to build an ensemble, lets the operator select a service by its
  hex identifier, and writes the selected service's decoded audio
  frames to a file.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Command dabrx is a command line DAB/DAB+ receiver.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dabreceiver/dab/internal/config"
	"github.com/dabreceiver/dab/internal/frontend"
	"github.com/dabreceiver/dab/internal/logutil"
	"github.com/dabreceiver/dab/internal/receiver"
)

const version = "v0.1.0"

func main() {
	cfg := config.Defaults()

	showVersion := flag.Bool("version", false, "show version")
	inputPath := flag.String("input", cfg.InputPath, "raw capture file to replay")
	freqMHz := flag.Float64("freq", cfg.FrequencyMHz, "tuned RF frequency in MHz (wavefinder input only)")
	serviceID := flag.String("service", cfg.ServiceID, "hex service identifier to select once known")
	outPath := flag.String("out", "dabrx.out", "file to write decoded audio frames to")
	logLevel := flag.Int("log-level", int(cfg.LogLevel), "minimum log severity (0=debug .. 4=fatal)")
	prsDebug := flag.Bool("prs-debug", cfg.PRSDebug, "log PRS magnitude-spectrum probe statistics")
	flag.Parse()

	if *showVersion {
		fmt.Println("dabrx " + version)
		return
	}

	cfg.InputPath = *inputPath
	cfg.FrequencyMHz = *freqMHz
	cfg.ServiceID = *serviceID
	cfg.LogLevel = int8(*logLevel)
	cfg.PRSDebug = *prsDebug

	log := logutil.NewCharm()
	log.SetLevel(cfg.LogLevel)

	var src frontend.Source
	switch cfg.Input {
	case config.SourceFile:
		src = frontend.NewFileSource(cfg.InputPath)
	default:
		log.Log(logutil.Fatal, "unsupported input source", "input", cfg.Input)
		os.Exit(1)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		log.Log(logutil.Fatal, "cannot create output file", "error", err.Error())
		os.Exit(1)
	}
	defer out.Close()

	rx := receiver.New(cfg, log, src)
	rx.SetAudioSink(&fileSink{w: bufio.NewWriter(out)})

	if err := rx.Start(); err != nil {
		log.Log(logutil.Fatal, "cannot start receiver", "error", err.Error())
		os.Exit(1)
	}

	if cfg.ServiceID != "" {
		if err := rx.Select(cfg.ServiceID); err != nil {
			log.Log(logutil.Error, "select failed", "error", err.Error())
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			rx.Stop()
			return
		case <-ticker.C:
			log.Log(logutil.Info, "ensemble", "description", rx.Ensemble().String())
		}
	}
}

// fileSink writes decoded MP2 and ADTS frames to an underlying writer
// with no additional framing; each call is one self-contained frame.
type fileSink struct {
	w *bufio.Writer
}

func (s *fileSink) WriteMP2Frame(frame []byte) error {
	_, err := s.w.Write(frame)
	if err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *fileSink) WriteADTSFrame(frame []byte) error {
	_, err := s.w.Write(frame)
	if err != nil {
		return err
	}
	return s.w.Flush()
}
