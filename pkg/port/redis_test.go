package port

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHandler creates a handler over a fresh doubly linked list store.
func newTestHandler(t *testing.T) *redisHandler {
	t.Helper()
	store, err := NewListStore(ListKindDoubly, 2 /*shardCount*/)
	require.NoError(t, err)
	handler, err := newRedisHandler(store)
	require.NoError(t, err)
	return handler
}

// run splits `line` on spaces and executes it as a command.
func run(rh *redisHandler, line string) redisOutput {
	fields := strings.Fields(line)
	return rh.handle(redisCommand{command: fields[0], args: fields[1:]})
}

func assertRedisInt(t *testing.T, expected int, output redisOutput) {
	t.Helper()
	require.Nil(t, output.err, "unexpected error reply")
	require.NotNil(t, output.writeInt)
	assert.Equal(t, expected, *output.writeInt)
}

func assertRedisBulk(t *testing.T, expected string, output redisOutput) {
	t.Helper()
	require.Nil(t, output.err, "unexpected error reply")
	require.NotNil(t, output.writeBulk)
	assert.Equal(t, expected, *output.writeBulk)
}

func assertRedisError(t *testing.T, expected string, output redisOutput) {
	t.Helper()
	require.NotNil(t, output.err)
	assert.Equal(t, expected, *output.err)
}

func TestRedisHandler_ListCommands(t *testing.T) {
	rh := newTestHandler(t)

	assertRedisInt(t, 3, run(rh, "RPUSH nums 2 4 6"))
	assertRedisBulk(t, "4", run(rh, "LAVG nums"))
	assertRedisInt(t, 5, run(rh, "lpush nums 1 0")) // [0 1 2 4 6]
	assertRedisBulk(t, "1", run(rh, "LINDEX nums 1"))
	assert.Equal(t, RedisOk, run(rh, "LSET nums 1 1.5").writeString)
	assertRedisBulk(t, "1.5", run(rh, "LINDEX nums 1"))
	assertRedisInt(t, 6, run(rh, "LINSERTAT nums 5 8"))  // [0 1.5 2 4 6 8]
	assertRedisInt(t, 7, run(rh, "LINSERTAT nums 6 10")) // Append position.
	assertRedisBulk(t, "4", run(rh, "LREMAT nums 3"))
	assertRedisBulk(t, "10", run(rh, "RPOP nums"))
	assertRedisBulk(t, "0", run(rh, "LPOP nums"))
	assertRedisInt(t, 4, run(rh, "LLEN nums")) // [1.5 2 6 8]
	assertRedisBulk(t, "4.375", run(rh, "LAVG nums"))
}

func TestRedisHandler_Errors(t *testing.T) {
	rh := newTestHandler(t)
	assertRedisInt(t, 3, run(rh, "RPUSH nums 1 2 3"))

	for _, testCase := range []struct {
		command  string
		expected string
	}{
		{command: "LINDEX nums 3", expected: "ERR index out of range"},
		{command: "LINDEX nums -1", expected: "ERR index out of range"},
		{command: "LSET nums 5 1", expected: "ERR index out of range"},
		{command: "LINSERTAT nums 4 1", expected: "ERR index out of range"},
		{command: "LREMAT nums 3", expected: "ERR index out of range"},
		{command: "LINDEX nums one", expected: "ERR value is not an integer or out of range"},
		{command: "RPUSH nums x", expected: "ERR value is not a number"},
		{command: "RPUSH nums NaN", expected: "ERR value is not a number"},
		{command: "LAVG empty", expected: "ERR list is empty"},
		{command: "LSET empty 0 1", expected: "ERR no such key"},
		{command: "RPUSH nums", expected: "ERR wrong number of arguments for 'rpush' command"},
		{command: "LPOP", expected: "ERR wrong number of arguments for 'lpop' command"},
		{command: "FLUSHALL", expected: "ERR unknown command 'FLUSHALL'"},
	} {
		t.Run(testCase.command, func(t *testing.T) {
			assertRedisError(t, testCase.expected, run(rh, testCase.command))
		})
	}
	// Failed commands leave the list untouched.
	assertRedisInt(t, 3, run(rh, "LLEN nums"))
}

func TestRedisHandler_MissingKeys(t *testing.T) {
	rh := newTestHandler(t)
	for _, command := range []string{"RPOP nope", "LPOP nope", "LINDEX nope 0", "LREMAT nope 0"} {
		assert.True(t, run(rh, command).writeNil, command)
	}
	assertRedisInt(t, 0, run(rh, "LLEN nope"))
	assertRedisInt(t, 0, run(rh, "DEL nope"))
}

func TestRedisHandler_KeysAndDel(t *testing.T) {
	rh := newTestHandler(t)
	assertRedisInt(t, 1, run(rh, "RPUSH list:b 1"))
	assertRedisInt(t, 1, run(rh, "RPUSH list:a 1"))
	assertRedisInt(t, 1, run(rh, "RPUSH other 1"))

	assert.Equal(t, []string{"list:a", "list:b"}, run(rh, "KEYS list:*").writeArray)
	assert.Equal(t, []string{}, run(rh, "KEYS nothing*").writeArray)
	assertRedisInt(t, 2, run(rh, "DEL list:a other"))
	assert.Equal(t, []string{"list:b"}, run(rh, "KEYS *").writeArray)

	// Popping the last element removes the key.
	assertRedisBulk(t, "1", run(rh, "LPOP list:b"))
	assert.Equal(t, []string{}, run(rh, "KEYS *").writeArray)
}

func TestRedisHandler_PingQuit(t *testing.T) {
	rh := newTestHandler(t)
	assert.Equal(t, "PONG", run(rh, "PING").writeString)
	quit := run(rh, "QUIT")
	assert.True(t, quit.closeConnection)
	assert.Equal(t, RedisOk, quit.writeString)
}

func TestMetricCommandName(t *testing.T) {
	assert.Equal(t, "RPUSH", metricCommandName("rpush"))
	assert.Equal(t, "UNKNOWN", metricCommandName("flushall"))
}

// respCommand encodes `args` as a RESP array of bulk strings.
func respCommand(args ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%d\r\n", len(args))
	for _, arg := range args {
		fmt.Fprintf(&sb, "$%d\r\n%s\r\n", len(arg), arg)
	}
	return sb.String()
}

func TestRedisServer_EndToEnd(t *testing.T) {
	server := newRedisServer("127.0.0.1:0", newTestHandler(t))
	listening := make(chan error, 1)
	go func() { _ = server.ListenServeAndSignal(listening) }()
	require.NoError(t, <-listening)
	t.Cleanup(func() { _ = server.Close() })

	conn, err := net.DialTimeout("tcp", server.Addr().String(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	reader := bufio.NewReader(conn)

	// readLine returns the next reply line without its CRLF.
	readLine := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSuffix(line, "\r\n")
	}

	_, err = conn.Write([]byte(respCommand("RPUSH", "k", "2", "4", "6")))
	require.NoError(t, err)
	assert.Equal(t, ":3", readLine())

	_, err = conn.Write([]byte(respCommand("LAVG", "k")))
	require.NoError(t, err)
	assert.Equal(t, "$1", readLine())
	assert.Equal(t, "4", readLine())

	_, err = conn.Write([]byte(respCommand("LINDEX", "k", "5")))
	require.NoError(t, err)
	assert.Equal(t, "-ERR index out of range", readLine())

	_, err = conn.Write([]byte(respCommand("RPOP", "missing")))
	require.NoError(t, err)
	assert.Equal(t, "$-1", readLine())

	_, err = conn.Write([]byte(respCommand("QUIT")))
	require.NoError(t, err)
	assert.Equal(t, "+OK", readLine())
}
