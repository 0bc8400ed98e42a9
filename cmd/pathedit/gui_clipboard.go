package main

import (
	"log"

	sysclip "golang.design/x/clipboard"

	"github.com/milk9111/pathedit/clipboard"
)

// systemClipboard mirrors copied items to the OS clipboard so they can be
// pasted into another editor window. Without a usable OS clipboard the
// workspace clipboard still works inside this window.
type systemClipboard struct {
	ok bool
}

func newSystemClipboard() *systemClipboard {
	if err := sysclip.Init(); err != nil {
		log.Printf("system clipboard unavailable: %v", err)
		return &systemClipboard{}
	}
	return &systemClipboard{ok: true}
}

func (c *systemClipboard) Write(d *clipboard.Data) {
	if !c.ok || d == nil {
		return
	}
	b, err := d.Marshal()
	if err != nil {
		log.Printf("copy: %v", err)
		return
	}
	sysclip.Write(sysclip.FmtText, b)
}

// Read returns the payload on the OS clipboard, nil when it holds
// something else.
func (c *systemClipboard) Read() *clipboard.Data {
	if !c.ok {
		return nil
	}
	b := sysclip.Read(sysclip.FmtText)
	if len(b) == 0 {
		return nil
	}
	d, err := clipboard.Unmarshal(b)
	if err != nil {
		return nil
	}
	return d
}
