package main

import (
	"fmt"
	"io"
	"time"

	"fake-store/go-client/internal/lifecycle"
	"fake-store/go-client/internal/remote"
)

// eventPrinter writes store lifecycle events to w while a command runs.
type eventPrinter struct {
	w    io.Writer
	sub  *lifecycle.Subscription
	done chan struct{}
}

func watchEvents(hub *lifecycle.Hub, w io.Writer) *eventPrinter {
	p := &eventPrinter{w: w, sub: hub.Subscribe(hub.LastSeq()), done: make(chan struct{})}
	go func() {
		defer close(p.done)
		for _, ev := range p.sub.Replay {
			printEvent(w, ev)
		}
		for ev := range p.sub.Events() {
			printEvent(w, ev)
		}
	}()
	return p
}

// stop closes the subscription and waits until buffered events are printed.
func (p *eventPrinter) stop() {
	if p == nil {
		return
	}
	p.sub.Close()
	<-p.done
	if missed := p.sub.Missed(); missed > 0 {
		fmt.Fprintf(p.w, "%d events not shown\n", missed)
	}
}

func printEvent(w io.Writer, ev lifecycle.Event) {
	line := fmt.Sprintf("%s #%d %s", ev.Timestamp.Format(time.TimeOnly), ev.Seq, ev.Name())
	if ev.Err != nil {
		line += ": " + remote.UserMessage(ev.Err)
	}
	fmt.Fprintln(w, line)
}
