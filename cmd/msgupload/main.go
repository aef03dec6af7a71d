// Command msgupload отправляет .msg в сервис конвертации и печатает полученный JSON.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sir_venger/msg2json/pkg/msgclient"
	"github.com/sir_venger/msg2json/pkg/msgproto"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var statusErr *msgclient.StatusError
		if errors.As(err, &statusErr) {
			fmt.Fprintf(os.Stderr, "error: server replied %d: %s\n", statusErr.Code, statusErr.Body)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		baseURL     string
		contentType string
		output      string
		quiet       bool
	)

	flagSet := pflag.NewFlagSet("msgupload", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&baseURL, "url", "http://127.0.0.1:3000", "base URL of the msg2json service")
	flagSet.StringVar(&contentType, "content-type", msgproto.ContentTypeOutlook, "content type of the msg part")
	flagSet.StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	flagSet.BoolVarP(&quiet, "quiet", "q", false, "do not draw the progress bar")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "usage: msgupload [flags] <file.msg>\n\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return errors.New("exactly one input file is required")
	}
	path := flagSet.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	var opts []msgclient.Option
	if !quiet {
		opts = append(opts, msgclient.WithProgress(stderr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := msgclient.New(baseURL, opts...).Convert(ctx, msgclient.ConvertRequest{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Reader:      f,
		Size:        info.Size(),
	})
	if err != nil {
		return err
	}

	if output == "" {
		_, err = stdout.Write(append(out, '\n'))
		return err
	}
	return os.WriteFile(output, out, 0o644)
}
