// Command embercache-cli is a tiny line-oriented command runner over
// *embercache.Handle, for manually exercising the keyspace engine and for
// smoke-testing a build.
//
// Usage:
//
//	embercache-cli                    # interactive REPL on stdin
//	embercache-cli -c "set k v"        # run one command and exit
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agilira/embercache"
)

func main() {
	var (
		oneShot    = flag.String("c", "", "run a single command and exit")
		maxMemory  = flag.Uint64("maxmemory", 0, "maxmemory bytes (0 = unbounded)")
		policy     = flag.String("policy", "allkeys-lru", "eviction policy (allkeys-lru, volatile-ttl, ...)")
		lfuDecay   = flag.Uint("lfu-decay", 1, "LFU decay minutes")
	)
	flag.Parse()

	cfg := embercache.DefaultConfig()
	cfg.MaxMemory = *maxMemory
	cfg.LFUDecayTime = uint32(*lfuDecay)
	if p, ok := embercache.ParsePolicy(*policy); ok {
		cfg.MaxMemoryPolicy = p
	} else {
		fmt.Fprintf(os.Stderr, "embercache-cli: unrecognized policy %q, using default\n", *policy)
	}

	h := embercache.NewHandle(cfg)
	defer h.Close()

	if *oneShot != "" {
		runLine(h, *oneShot)
		return
	}

	fmt.Println("embercache-cli — type \"help\" for the command list, \"quit\" to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("embercache> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		runLine(h, line)
	}
}

func runLine(h *embercache.Handle, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	out, err := dispatch(h, cmd, args)
	if err != nil {
		fmt.Printf("(error) %v\n", err)
		return
	}
	fmt.Println(out)
}

func dispatch(h *embercache.Handle, cmd string, args []string) (string, error) {
	switch cmd {
	case "help":
		return helpText, nil

	case "set":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: set key value")
		}
		ok, err := h.Set(args[0], []byte(args[1]), embercache.SetOptions{})
		return boolReply(ok), err

	case "get":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: get key")
		}
		v, err := h.Get(args[0])
		if embercache.IsKeyNotExist(err) {
			return "(nil)", nil
		}
		return string(v), err

	case "del":
		n, err := h.Del(args...)
		return strconv.Itoa(n), err

	case "exists":
		n, err := h.Exists(args...)
		return strconv.Itoa(n), err

	case "ttl":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: ttl key")
		}
		ttl, err := h.TTL(args[0])
		return strconv.FormatInt(ttl, 10), err

	case "expire":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: expire key seconds")
		}
		seconds, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return "", perr
		}
		ok, err := h.Expire(args[0], seconds)
		return boolReply(ok), err

	case "type":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: type key")
		}
		return h.Type(args[0])

	case "incr":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: incr key")
		}
		n, err := h.Incr(args[0])
		return strconv.FormatInt(n, 10), err

	case "setbit":
		if len(args) != 3 {
			return "", fmt.Errorf("usage: setbit key offset value")
		}
		offset, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return "", perr
		}
		value, perr := strconv.Atoi(args[2])
		if perr != nil {
			return "", perr
		}
		old, err := h.SetBit(args[0], offset, value)
		return strconv.Itoa(old), err

	case "getbit":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: getbit key offset")
		}
		offset, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return "", perr
		}
		bit, err := h.GetBit(args[0], offset)
		return strconv.Itoa(bit), err

	case "size":
		return strconv.Itoa(h.Size()), nil

	case "flush":
		h.Flush()
		return "OK", nil

	case "stats":
		s := h.Stats()
		return fmt.Sprintf("hits=%d misses=%d evicted=%d expired=%d keys=%d hit_ratio=%.2f%%",
			s.Hits, s.Misses, s.Evicted, s.Expired, s.Keys, s.HitRatio()*100), nil

	default:
		return "", fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
}

func boolReply(ok bool) string {
	if ok {
		return "OK"
	}
	return "(nil)"
}

const helpText = `commands:
  set key value        getbit key offset
  get key               setbit key offset value
  del key [key ...]     incr key
  exists key [key ...]  ttl key
  expire key seconds    type key
  size                  flush
  stats                 quit`
