package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/nobletooth/chain/pkg/list"
	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

var address = flag.String("address", ":6381", "The ip:port to listen on for Redis protocol.")

var (
	errNotANumber  = errors.New("value is not a number")
	errNotAnIndex  = errors.New("value is not an integer or out of range")
	errUnknownKind = errors.New("unknown redis output")
)

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string
	args    []string
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool     // Closes the connection if true.
	writeNil        bool     // Writes a nil value if true.
	err             *string  // Error to return if set.
	writeInt        *int     // Writes an integer value if set.
	writeBulk       *string  // Writes a bulk string if set.
	writeArray      []string // Writes an array of bulk strings if non-nil.
	writeString     string   // Writes a simple string value otherwise.
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisNil() redisOutput {
	return redisOutput{writeNil: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisNumber(f float64) redisOutput {
	s := strconv.FormatFloat(f, 'f', -1 /*prec*/, 64 /*bitSize*/)
	return redisOutput{writeBulk: &s}
}

func writeRedisArray(items []string) redisOutput {
	if items == nil {
		items = []string{}
	}
	return redisOutput{writeArray: items}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

// wrongArity builds the Redis error for a command called with the wrong number of arguments.
func wrongArity(command string) redisOutput {
	return writeRedisError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(command)))
}

// writeListError maps list errors onto their Redis error replies; sentinel errors lose their wrapping context.
func writeListError(err error) redisOutput {
	switch {
	case errors.Is(err, list.ErrEmptyList):
		return writeRedisError(list.ErrEmptyList)
	case errors.Is(err, list.ErrIndexOutOfRange):
		return writeRedisError(list.ErrIndexOutOfRange)
	default:
		return writeRedisError(err)
	}
}

func parseNumber(arg string) (float64, error) {
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotANumber
	}
	return f, nil
}

func parseNumbers(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		v, err := parseNumber(arg)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func parseIndex(arg string) (int, error) {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errNotAnIndex
	}
	return idx, nil
}

type redisHandler struct {
	store *ListStore
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(store *ListStore) (*redisHandler, error) {
	if store == nil {
		return nil, errors.New("expected a non-nil list store")
	}
	return &redisHandler{store: store}, nil
}

// handle executes `cmd` on the store. The command name is matched case insensitively.
func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	command := strings.ToUpper(cmd.command)
	switch command {
	case "PING":
		return writeRedisString("PONG")
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "RPUSH", "LPUSH":
		if len(cmd.args) < 2 {
			return wrongArity(command)
		}
		values, err := parseNumbers(cmd.args[1:])
		if err != nil {
			return writeRedisError(err)
		}
		push := rh.store.Push
		if command == "LPUSH" {
			push = rh.store.Unshift
		}
		length, err := push(cmd.args[0], values...)
		if err != nil {
			return writeListError(err)
		}
		return writeRedisInt(length)
	case "RPOP", "LPOP":
		if len(cmd.args) != 1 {
			return wrongArity(command)
		}
		pop := rh.store.Pop
		if command == "LPOP" {
			pop = rh.store.Shift
		}
		value, err := pop(cmd.args[0])
		if errors.Is(err, ErrKeyNotFound) {
			return writeRedisNil()
		} else if err != nil {
			return writeListError(err)
		}
		return writeRedisNumber(value)
	case "LINDEX", "LREMAT":
		if len(cmd.args) != 2 {
			return wrongArity(command)
		}
		idx, err := parseIndex(cmd.args[1])
		if err != nil {
			return writeRedisError(err)
		}
		lookup := rh.store.GetAt
		if command == "LREMAT" {
			lookup = rh.store.RemoveAt
		}
		value, err := lookup(cmd.args[0], idx)
		if errors.Is(err, ErrKeyNotFound) {
			return writeRedisNil()
		} else if err != nil {
			return writeListError(err)
		}
		return writeRedisNumber(value)
	case "LSET":
		if len(cmd.args) != 3 {
			return wrongArity(command)
		}
		idx, err := parseIndex(cmd.args[1])
		if err != nil {
			return writeRedisError(err)
		}
		value, err := parseNumber(cmd.args[2])
		if err != nil {
			return writeRedisError(err)
		}
		if err := rh.store.SetAt(cmd.args[0], idx, value); err != nil {
			return writeListError(err)
		}
		return writeRedisString(RedisOk)
	case "LINSERTAT":
		if len(cmd.args) != 3 {
			return wrongArity(command)
		}
		idx, err := parseIndex(cmd.args[1])
		if err != nil {
			return writeRedisError(err)
		}
		value, err := parseNumber(cmd.args[2])
		if err != nil {
			return writeRedisError(err)
		}
		length, err := rh.store.InsertAt(cmd.args[0], idx, value)
		if err != nil {
			return writeListError(err)
		}
		return writeRedisInt(length)
	case "LAVG":
		if len(cmd.args) != 1 {
			return wrongArity(command)
		}
		avg, err := rh.store.Average(cmd.args[0])
		if err != nil {
			return writeListError(err)
		}
		return writeRedisNumber(avg)
	case "LLEN":
		if len(cmd.args) != 1 {
			return wrongArity(command)
		}
		return writeRedisInt(rh.store.Len(cmd.args[0]))
	case "DEL":
		if len(cmd.args) < 1 {
			return wrongArity(command)
		}
		return writeRedisInt(rh.store.Delete(cmd.args...))
	case "KEYS":
		if len(cmd.args) != 1 {
			return wrongArity(command)
		}
		keys, err := rh.store.Keys(cmd.args[0])
		if err != nil {
			return writeRedisError(err)
		}
		return writeRedisArray(keys)
	default:
		return writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	}
}

// writeOutput writes `output` to `conn`, closing the connection if requested.
func writeOutput(conn redcon.Conn, output redisOutput) {
	switch {
	case output.closeConnection:
		conn.WriteString(output.writeString)
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close connection.", "error", err)
		}
	case output.err != nil:
		conn.WriteError(*output.err)
	case output.writeNil:
		conn.WriteNull()
	case output.writeInt != nil:
		conn.WriteInt(*output.writeInt)
	case output.writeBulk != nil:
		conn.WriteBulkString(*output.writeBulk)
	case output.writeArray != nil:
		conn.WriteArray(len(output.writeArray))
		for _, item := range output.writeArray {
			conn.WriteBulkString(item)
		}
	case output.writeString != "":
		conn.WriteString(output.writeString)
	default:
		conn.WriteError("ERR " + errUnknownKind.Error())
	}
}

// serve converts a redcon command, runs it and writes the reply.
func (rh *redisHandler) serve(conn redcon.Conn, cmd redcon.Command) {
	command := redisCommand{command: string(cmd.Args[0]), args: make([]string, len(cmd.Args)-1)}
	for i := 1; i < len(cmd.Args); i++ {
		command.args[i-1] = string(cmd.Args[i])
	}
	output := rh.handle(command)

	status := "ok"
	if output.err != nil {
		status = "error"
		slog.Debug("Command failed.", "command", command.command, "error", *output.err, "remote", conn.RemoteAddr())
	}
	commandsMetric.WithLabelValues(metricCommandName(command.command), status).Inc()
	writeOutput(conn, output)
}

// metricCommandName bounds the cardinality of the command label to the supported commands.
func metricCommandName(command string) string {
	switch upper := strings.ToUpper(command); upper {
	case "PING", "QUIT", "RPUSH", "LPUSH", "RPOP", "LPOP", "LINDEX", "LSET", "LINSERTAT", "LREMAT", "LAVG", "LLEN",
		"DEL", "KEYS":
		return upper
	default:
		return "UNKNOWN"
	}
}

// newRedisServer creates a redcon server listening on `addr` and serving the given handler.
func newRedisServer(addr string, rh *redisHandler) *redcon.Server {
	return redcon.NewServerNetwork("tcp" /*net*/, addr,
		/*handler*/ rh.serve,
		/*accept*/ func(conn redcon.Conn) bool {
			slog.Debug("Accepted connection.", "remote", conn.RemoteAddr())
			return true // Accept all connections.
		},
		/*closed*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Warn("Connection closed with an error.", "remote", conn.RemoteAddr(), "error", err)
			}
		})
}

// RunRedisServer starts a Redis protocol server over the given list store and blocks until `ctx` is done.
func RunRedisServer(ctx context.Context, store *ListStore) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	redisHandler, err := newRedisHandler(store)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}
	redisServer := newRedisServer(*address, redisHandler)

	serverErrSignal := make(chan error, 1)
	go func() {
		slog.Info("Serving Redis protocol.", "address", *address)
		if err := redisServer.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()

	select {
	case <-ctx.Done():
		if err := redisServer.Close(); err != nil {
			return fmt.Errorf("failed to close chain: %w", err)
		}
	case err, hasErr := <-serverErrSignal:
		if !hasErr {
			return errors.New("redis server stopped unexpectedly")
		}
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}
