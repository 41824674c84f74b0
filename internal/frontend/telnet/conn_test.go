package telnet

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// pipeConn returns a Conn reading what is written to the returned client end.
func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, 0, time.Second), client
}

func TestReadLine_Terminators(t *testing.T) {
	c, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("look\r\nn\ruse lamp\nquit"))
		client.Close()
	}()

	for _, want := range []string{"look", "n", "use lamp"} {
		line, err := c.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}
	line, err := c.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "quit", line)
}

func TestReadLine_StripsCommandsAndControlBytes(t *testing.T) {
	c, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte{
			IAC, DO, OptEcho,
			'l', 0x07, 'o',
			IAC, SB, 24, 0, 'v', 't', IAC, SE,
			'o', '\t', 'k', IAC, NOP,
			'\r', '\n',
		})
	}()

	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "loo\tk", line)
}

func TestWriteLineAndPrompt(t *testing.T) {
	c, client := pipeConn(t)
	go func() {
		_ = c.WriteLine("you see nothing special")
		_ = c.WritePrompt("> ")
	}()

	buf := make([]byte, len("you see nothing special\r\n> "))
	_, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	assert.Equal(t, "you see nothing special\r\n> ", string(buf))
}

func TestNegotiate(t *testing.T) {
	c, client := pipeConn(t)
	go func() { _ = c.Negotiate() }()

	buf := make([]byte, 3)
	_, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WILL, OptSuppressGoAhead}, buf)
}

func TestWriteAfterCloseFails(t *testing.T) {
	c, _ := pipeConn(t)
	require.NoError(t, c.Close())
	assert.Error(t, c.WriteLine("hello"))
}

func TestFilterIAC(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{"plain", []byte("hello"), []byte("hello")},
		{"option", []byte{IAC, WILL, OptEcho, 'h', 'i'}, []byte("hi")},
		{"option mid line", []byte{'a', IAC, DO, OptLinemode, 'b'}, []byte("ab")},
		{"only option", []byte{IAC, DONT, OptEcho}, []byte{}},
		{"subnegotiation", []byte{IAC, SB, 24, 0, 'x', IAC, SE, 'z'}, []byte("z")},
		{"escaped", []byte{'a', IAC, IAC, 'b'}, []byte{'a', IAC, 'b'}},
		{"bare command", []byte{'x', IAC, NOP, 'y'}, []byte("xy")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterIAC(tt.input))
		})
	}
}

func TestPropertyFilterIAC_PlainBytesPassThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOf(rapid.ByteRange(0, 254)).Draw(t, "input")
		got := FilterIAC(input)
		if string(got) != string(input) {
			t.Fatalf("FilterIAC(%v) = %v", input, got)
		}
	})
}

func TestPropertyFilterIAC_NeverGrows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOf(rapid.Byte()).Draw(t, "input")
		if got := FilterIAC(input); len(got) > len(input) {
			t.Fatalf("output %d bytes longer than input %d", len(got), len(input))
		}
	})
}
