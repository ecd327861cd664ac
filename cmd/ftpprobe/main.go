// Command ftpprobe checks that FTP servers answer on their control channel
// and can negotiate a data connection.
//
//	ftpprobe --host=192.168.1.10-20 --port=21,2121 --mode=active
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	ftp "github.com/gonzalop/ftpcontrol"
	"github.com/gonzalop/ftpcontrol/internal/probe"
)

var (
	host     string
	port     string
	workers  int
	timeout  int
	rate     float64
	mode     string
	charset  string
	user     string
	password string
	verbose  bool
)

func main() {
	app := &cli.App{
		Name:        "ftpprobe",
		Usage:       "use like: ftpprobe --host=192.168.1.100-110 --port=21 --mode=passive",
		Description: "Check FTP control channels and data connection negotiation",
		Version:     "v0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "host",
				Value:       "127.0.0.1",
				Usage:       "support 3 types: 192.168.1.1,192.168.1.100-254,192.168.1.0/24",
				Destination: &host,
			},
			&cli.StringFlag{
				Name:        "port",
				Value:       "21",
				Usage:       "support like: 21,2121,2100-2110",
				Destination: &port,
			},
			&cli.IntFlag{
				Name:        "workers",
				Usage:       "endpoints probed at once",
				Value:       probe.DefaultWorkers,
				Destination: &workers,
			},
			&cli.IntFlag{
				Name:        "timeout",
				Usage:       "per operation timeout in ms",
				Value:       int(probe.DefaultTimeout / time.Millisecond),
				Destination: &timeout,
			},
			&cli.Float64Flag{
				Name:        "rate",
				Usage:       "new connections per second, 0 for unlimited",
				Destination: &rate,
			},
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "data connection mode: passive | active",
				Value:       "passive",
				Destination: &mode,
			},
			&cli.StringFlag{
				Name:        "encoding",
				Usage:       "control channel text encoding: utf-8 | latin1 | cp1252 | big5 | gbk | ebcdic",
				Value:       "utf-8",
				Destination: &charset,
			},
			&cli.StringFlag{
				Name:        "user",
				Usage:       "log in as this user before opening the data connection",
				Destination: &user,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "password for --user",
				EnvVars:     []string{"FTPPROBE_PASSWORD"},
				Destination: &password,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "log the control channel dialogue to stderr",
				Destination: &verbose,
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	dataMode, err := ftp.ParseDataConnectMode(mode)
	if err != nil {
		return err
	}
	enc, err := ftp.ParseEncoding(charset)
	if err != nil {
		return err
	}
	hosts, err := probe.ParseHosts(host)
	if err != nil {
		return err
	}
	ports, err := probe.ParsePorts(port)
	if err != nil {
		return err
	}

	results, err := probe.New(probe.Config{
		Workers:  workers,
		Timeout:  time.Duration(timeout) * time.Millisecond,
		Rate:     rate,
		Mode:     dataMode,
		Encoding: enc,
		User:     user,
		Password: password,
		Logger:   logger,
	}).Run(c.Context, hosts, ports)

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
		fmt.Fprintln(c.App.Writer, r)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d endpoints failed", failed, len(results)), 1)
	}
	return nil
}
