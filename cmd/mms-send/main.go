// Command mms-send submits an outgoing MMS through a running mms-engine
// daemon over D-Bus, grounded on mms-send/mms-send.c.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/jessevdk/go-flags"

	"github.com/nemomobile/mms-engine-sub000/busadapter"
)

const defaultBusName = "org.nemomobile.MmsEngine"

type options struct {
	Verbose        bool   `short:"v" long:"verbose" description:"Print the assigned message id"`
	Subject        string `short:"s" long:"subject" description:"Set message subject" value-name:"TEXT"`
	DeliveryReport bool   `short:"d" long:"delivery-report" description:"Request delivery report"`
	ReadReport     bool   `short:"r" long:"read-report" description:"Request read report"`
	Args           struct {
		To    string   `positional-arg-name:"TO"`
		Files []string `positional-arg-name:"FILES"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] TO FILES..."
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}
	if len(opts.Args.Files) == 0 {
		fmt.Fprintln(os.Stderr, "mms-send: at least one file is required")
		os.Exit(1)
	}

	files := make([]busadapter.Attachment, len(opts.Args.Files))
	for i, f := range opts.Args.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mms-send: %s: %v\n", f, err)
			os.Exit(1)
		}
		if _, err := os.Stat(abs); err != nil {
			fmt.Fprintf(os.Stderr, "mms-send: no such file: %s\n", abs)
			os.Exit(1)
		}
		files[i] = busadapter.Attachment{File: abs}
	}

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mms-send: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	var flags_ uint32
	if opts.DeliveryReport {
		flags_ |= 0x01
	}
	if opts.ReadReport {
		flags_ |= 0x02
	}

	obj := conn.Object(defaultBusName, busadapter.ObjectPath)
	to := strings.Split(opts.Args.To, ",")

	var assigned string
	call := obj.Call(defaultBusName+".SendMessage", 0,
		"", "", to, []string{}, []string{}, opts.Subject, flags_, files)
	if call.Err != nil {
		fmt.Fprintln(os.Stderr, call.Err)
		os.Exit(3)
	}
	if err := call.Store(&assigned); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
	if opts.Verbose {
		fmt.Println(assigned)
	}
}
