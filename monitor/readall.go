package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gammazero/deque"
	"lautenbacher.net/gowiring/wiring"
)

const (
	tableRule   = " +-----+-----+---------+------+---+----Pi----+---+------+---------+-----+-----+"
	tableHeader = " | BCM | wPi |   Name  | Mode | V | Physical | V | Mode | Name    | wPi | BCM |"
	tableMiddle = " +-----+-----+---------+------+---+----++----+---+------+---------+-----+-----+"
)

func number(n int) string {
	if n < 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func value(h wiring.HeaderPin) string {
	if !h.HasGpio() {
		return ""
	}
	return strconv.Itoa(h.Level.Code())
}

// RenderTable lays out header positions the way gpio readall does, odd
// positions left and even ones right.
func RenderTable(pins []wiring.HeaderPin) string {
	var b strings.Builder
	b.WriteString(tableRule + "\n" + tableHeader + "\n" + tableMiddle + "\n")
	for i := 0; i+1 < len(pins); i += 2 {
		l, r := pins[i], pins[i+1]
		fmt.Fprintf(&b, " | %3s | %3s | %7s | %4s | %1s | %2d |",
			number(l.Gpio), number(l.Wpi), l.Name, l.ModeName(), value(l), l.Phys)
		fmt.Fprintf(&b, "| %-2d | %1s | %-4s | %-7s | %-3s | %-3s |\n",
			r.Phys, value(r), r.ModeName(), r.Name, number(r.Wpi), number(r.Gpio))
	}
	b.WriteString(tableMiddle + "\n" + tableHeader + "\n" + tableRule + "\n")
	return b.String()
}

// RenderHistory draws one trace per watched position, oldest sample left.
func RenderHistory(watched []int, pins []wiring.HeaderPin, history map[int]*deque.Deque[wiring.Level]) string {
	var b strings.Builder
	for _, phys := range watched {
		name := ""
		if phys >= 1 && phys <= len(pins) {
			name = pins[phys-1].Name
		}
		fmt.Fprintf(&b, " [yellow]%2d %-7s[-] ", phys, name)
		if q, ok := history[phys]; ok {
			for i := range q.Len() {
				if q.At(i) == wiring.High {
					b.WriteRune('█')
				} else {
					b.WriteRune('▁')
				}
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
