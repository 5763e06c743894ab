/*
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

//
// linkdemo sends messages to an address of the in-memory broker and
// receives them back, driving both links with the pump.
//

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/auth"
	"qpid.apache.org/linkengine/broker"
	"qpid.apache.org/linkengine/internal/config"
	"qpid.apache.org/linkengine/internal/logger"
	"qpid.apache.org/linkengine/messaging"
	"qpid.apache.org/linkengine/proton"
)

// Usage and command-line flags
func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags]
Send messages to the loopback broker and receive them back.
Link settings are read from LINKDEMO_* environment variables, e.g.
LINKDEMO_IDLE_TIMEOUT=2s or LINKDEMO_SND_SETTLE=settled.
`, os.Args[0])
	flag.PrintDefaults()
}

var (
	count    = flag.Int("count", 10, "Send this many messages.")
	address  = flag.String("address", "amqp://localhost/demo", "URL of the form amqp://<host>/<address>")
	prefetch = flag.Uint("prefetch", 0, "Receiver prefetch, 0 keeps the configured value.")
	batch    = flag.Int("batch", 5, "Receive at most this many messages per batch.")
	mech     = flag.String("auth", "anonymous", "Authentication: anonymous, jwt or sas.")
	debug    = flag.Bool("debug", false, "Print detailed debug output")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := logger.NewConsoleLogger("linkdemo", level)
	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("linkdemo failed")
	}
}

func run(log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load("LINKDEMO_")
	if err != nil {
		return err
	}
	u, err := amqp.ParseURL(*address)
	if err != nil {
		return err
	}
	addr := amqp.Address(u)
	if addr == "" {
		return fmt.Errorf("no address in %q", *address)
	}
	cfg.Hostname = u.Hostname()
	if *prefetch > 0 {
		cfg.Prefetch = uint32(*prefetch)
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = time.Second
	}

	key := []byte("linkdemo-key")
	b := broker.New(
		broker.WithLogger(log.GetChildLogger()),
		broker.WithJWTKey("linkdemo", key),
		broker.WithSASKey("linkdemo", key),
	)
	h, err := authHandle(*mech, u.String(), key)
	if err != nil {
		return err
	}
	opts := []messaging.Option{messaging.WithConfig(cfg), messaging.WithLogger(log)}

	start := time.Now()
	sent, err := send(ctx, b, h, addr, opts)
	if err != nil {
		return err
	}
	log.Info().Int("sent", sent).Int("queued", b.Depth(addr)).Dur("elapsed", time.Since(start)).Msg("send complete")

	received, batches, err := receive(ctx, log, b, h, addr, opts)
	if err != nil {
		return err
	}
	fmt.Printf("sent %d, received %d in %d batches (%v) in %v\n", sent, received, batches, b.Stats(), time.Since(start).Round(time.Millisecond))
	if received != sent {
		return fmt.Errorf("received %d of %d messages", received, sent)
	}
	return nil
}

func authHandle(mech, audience string, key []byte) (proton.AuthHandle, error) {
	switch mech {
	case "anonymous":
		return auth.Anonymous(), nil
	case "jwt":
		return auth.CBS(audience, auth.NewJWTProvider("linkdemo", "linkdemo", key, time.Hour)), nil
	case "sas":
		return auth.CBS(audience, auth.NewSASProvider("linkdemo", key, time.Hour)), nil
	default:
		return nil, fmt.Errorf("unknown auth %q", mech)
	}
}

func send(ctx context.Context, b *broker.Broker, h proton.AuthHandle, addr string, opts []messaging.Option) (int, error) {
	s, err := messaging.NewSendClient(b, h, addr, opts...)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	var pms []*messaging.PendingMessage
	for i := 0; i < *count; i++ {
		m := amqp.NewMessageWith(fmt.Sprintf("%v%v", addr, i))
		pms = append(pms, s.QueueMessage(m, messaging.CorrelationValue(i)))
	}
	if err := s.SendAllMessages(ctx); err != nil {
		return 0, err
	}
	sent := 0
	for _, pm := range pms {
		out := pm.Outcome()
		if out.Status != messaging.Sent {
			return sent, fmt.Errorf("message %v: %v: %w", out.Value, out.Status, out.Error)
		}
		sent++
	}
	return sent, nil
}

func receive(ctx context.Context, log *logger.Logger, b *broker.Broker, h proton.AuthHandle, addr string, opts []messaging.Option) (received, batches int, err error) {
	r, err := messaging.NewReceiveClient(b, h, addr, opts...)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()
	for received < *count {
		rms, err := r.ReceiveMessageBatch(ctx, *batch, 0)
		if err != nil {
			return received, batches, err
		}
		if len(rms) == 0 {
			break
		}
		batches++
		received += len(rms)
		for _, rm := range rms {
			log.Debug().Interface("body", rm.Message.Body()).Msg("received")
		}
		if !r.IsOpen() {
			break
		}
	}
	return received, batches, nil
}
