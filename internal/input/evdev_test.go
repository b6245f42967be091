//go:build linux

package input

import (
	"bytes"
	"context"
	"encoding/binary"
	"syscall"
	"testing"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	events := []keyEvent{
		{Time: syscall.Timeval{Sec: 10, Usec: 500000}, Type: evKey, Code: 36, Value: keyPressed},
		{Time: syscall.Timeval{Sec: 10, Usec: 510000}, Type: 0, Code: 0, Value: 0},
		{Time: syscall.Timeval{Sec: 10, Usec: 520000}, Type: evKey, Code: 36, Value: 2},
		{Time: syscall.Timeval{Sec: 10, Usec: 530000}, Type: evKey, Code: 99, Value: keyPressed},
		{Time: syscall.Timeval{Sec: 10, Usec: 750000}, Type: evKey, Code: 36, Value: keyReleased},
	}
	for _, ev := range events {
		if err := binary.Write(&buf, binary.LittleEndian, ev); nil != err {
			t.Fatal(err)
		}
	}

	keymap := map[uint16]int{36: 3}
	clock := SongClock(time.Unix(10, 0), time.Second)
	out := make(chan game.Edge, len(events))
	if err := decode(context.Background(), &buf, keymap, clock, out); nil != err {
		t.Fatal(err)
	}
	close(out)

	edges := []game.Edge{}
	for e := range out {
		edges = append(edges, e)
	}
	expected := []game.Edge{
		{Lane: 3, Pressed: true, Time: 1500 * time.Millisecond},
		{Lane: 3, Pressed: false, Time: 1750 * time.Millisecond},
	}
	if len(edges) != len(expected) {
		t.Fatalf("got %+v", edges)
	}
	for i := range expected {
		if edges[i] != expected[i] {
			t.Errorf("edge %d is %+v, expected %+v", i, edges[i], expected[i])
		}
	}
}

func TestReadEvdevMissingDevice(t *testing.T) {
	err := ReadEvdev(context.Background(), "/nonexistent/event-kbd", nil, nil, nil)
	if nil == err {
		t.Error("expected an error for a missing device")
	}
}
