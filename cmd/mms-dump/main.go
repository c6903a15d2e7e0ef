// Command mms-dump decodes an MMS PDU file and prints its headers and
// part list in a human-readable form, grounded on mms-dump/mms-dump.c.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/nemomobile/mms-engine-sub000/mmspdu"
)

type options struct {
	Verbose bool `short:"v" long:"verbose" description:"Dump part contents as well as headers"`
	Args    struct {
		File string `positional-arg-name:"FILE" required:"true"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] FILE"
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	data, err := os.ReadFile(opts.Args.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mms-dump: %v\n", err)
		os.Exit(2)
	}

	pdu, err := mmspdu.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mms-dump: decode: %v\n", err)
		os.Exit(3)
	}

	dump(pdu, opts.Verbose)
}

func dump(pdu *mmspdu.PDU, verbose bool) {
	fmt.Printf("Message-Type: %s\n", pdu.Kind)
	if tid := pdu.TransactionID(); tid != "" {
		fmt.Printf("Transaction-Id: %s\n", tid)
	}

	switch pdu.Kind {
	case mmspdu.KindSendReq:
		dumpSendReq(pdu.SendReq, verbose)
	case mmspdu.KindSendConf:
		c := pdu.SendConf
		fmt.Printf("Response-Status: %v\n", c.ResponseStatus)
		if c.ResponseText != "" {
			fmt.Printf("Response-Text: %s\n", c.ResponseText)
		}
		fmt.Printf("Message-Id: %s\n", c.MessageID)
	case mmspdu.KindNotificationInd:
		n := pdu.NotificationInd
		fmt.Printf("From: %s\n", n.From)
		fmt.Printf("Subject: %s\n", n.Subject)
		fmt.Printf("Message-Class: %d\n", n.MessageClass)
		fmt.Printf("Message-Size: %d\n", n.MessageSize)
		fmt.Printf("Expiry: %d\n", n.ExpirySeconds)
		fmt.Printf("Content-Location: %s\n", n.ContentLocation)
	case mmspdu.KindNotifyRespInd:
		fmt.Printf("Status: %v\n", pdu.NotifyRespInd.Status)
	case mmspdu.KindRetrieveConf:
		dumpRetrieveConf(pdu.RetrieveConf, verbose)
	case mmspdu.KindAcknowledgeInd:
		fmt.Printf("Report-Allowed: %v\n", pdu.AcknowledgeInd.ReportAllowed)
	case mmspdu.KindDeliveryInd:
		d := pdu.DeliveryInd
		fmt.Printf("Message-Id: %s\n", d.MessageID)
		fmt.Printf("To: %s\n", d.To)
		fmt.Printf("Status: %v\n", d.Status)
	case mmspdu.KindReadRecInd:
		r := pdu.ReadRecInd
		fmt.Printf("Message-Id: %s\n", r.MessageID)
		fmt.Printf("To: %s\n", r.To)
		fmt.Printf("From: %s\n", r.From)
		fmt.Printf("Read-Status: %v\n", r.ReadStatus)
	case mmspdu.KindReadOrigInd:
		r := pdu.ReadOrigInd
		fmt.Printf("Message-Id: %s\n", r.MessageID)
		fmt.Printf("To: %s\n", r.To)
		fmt.Printf("From: %s\n", r.From)
		fmt.Printf("Read-Status: %v\n", r.ReadStatus)
	}
}

func dumpSendReq(r *mmspdu.SendReq, verbose bool) {
	fmt.Printf("From: %s\n", r.From)
	fmt.Printf("To: %v\n", r.To)
	if len(r.Cc) > 0 {
		fmt.Printf("Cc: %v\n", r.Cc)
	}
	if len(r.Bcc) > 0 {
		fmt.Printf("Bcc: %v\n", r.Bcc)
	}
	fmt.Printf("Subject: %s\n", r.Subject)
	fmt.Printf("Content-Type: %s\n", r.ContentType.Full)
	dumpParts(r.Parts, verbose)
}

func dumpRetrieveConf(c *mmspdu.RetrieveConf, verbose bool) {
	fmt.Printf("From: %s\n", c.From)
	fmt.Printf("To: %v\n", c.To)
	fmt.Printf("Subject: %s\n", c.Subject)
	fmt.Printf("Message-Id: %s\n", c.MessageID)
	fmt.Printf("Content-Type: %s\n", c.ContentType.Full)
	dumpParts(c.Parts, verbose)
}

func dumpParts(parts []mmspdu.Part, verbose bool) {
	fmt.Printf("Parts: %d\n", len(parts))
	for i, p := range parts {
		fmt.Printf("  [%d] %s (%d bytes) id=%s location=%s\n",
			i, p.ContentType, len(p.Body), p.ContentID, p.ContentLocation)
		if verbose {
			fmt.Printf("%s\n", p.Body)
		}
	}
}
