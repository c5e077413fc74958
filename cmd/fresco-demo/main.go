// Command fresco-demo runs the additive/multiplicative scenario from
// spec.md §8 end to end over real TCP sockets. It is a demo shell only —
// spec.md §1 excludes CLI tooling from the core — so it is the one place
// in this module that parses flags, the way the teacher's own protocol
// packages carry no CLI layer and leave that to whatever wraps them.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"strings"
	"sync"

	"fresco/builder"
	"fresco/evaluator"
	"fresco/field"
	"fresco/logging"
	"fresco/maccheck"
	"fresco/network"
	"fresco/numeric"
	"fresco/offline/dealer"
	"fresco/protocol"
	"fresco/resource"
	"fresco/spdzshare"

	"go.dedis.ch/kyber/v4/group/edwards25519"
)

func main() {
	n := flag.Int("n", 3, "number of parties")
	base := flag.Int("base-port", 9300, "first party listens on 127.0.0.1:base-port, party i on base-port+i")
	threshold := flag.Int("threshold", 2, "Pedersen-commitment threshold for the dealer's seed sharing")
	flag.Parse()

	addrs := make([]string, *n)
	for i := range addrs {
		addrs[i] = fmt.Sprintf("127.0.0.1:%d", *base+i)
	}
	fmt.Printf("fresco-demo: %d parties on %s\n", *n, strings.Join(addrs, ", "))

	f := field.Mersenne61
	group := edwards25519.NewBlakeSHA256Ed25519()
	d := dealer.New(f, group)

	_, stream, err := d.CommitSeed(*n, *threshold)
	if err != nil {
		log.Fatalf("fresco-demo: committing seed: %v", err)
	}
	alphaShares, err := d.DealMacKey(stream, *n)
	if err != nil {
		log.Fatalf("fresco-demo: dealing MAC key: %v", err)
	}

	suppliers := make([]*resource.QueueSupplier, *n)
	for i := range suppliers {
		suppliers[i] = resource.NewQueueSupplier(4, 4, 4)
	}
	if err := d.DealTriples(stream, suppliers, 4); err != nil {
		log.Fatalf("fresco-demo: dealing triples: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]int64, *n)
	errs := make([]error, *n)
	wg.Add(*n)
	for i := 0; i < *n; i++ {
		i := i
		go func() {
			defer wg.Done()
			results[i], errs[i] = runParty(i, *n, addrs, f, alphaShares[i], suppliers[i])
		}()
	}
	wg.Wait()

	for i := 0; i < *n; i++ {
		if errs[i] != nil {
			log.Fatalf("fresco-demo: party %d: %v", i, errs[i])
		}
		fmt.Printf("party %d opened result: %d\n", i, results[i])
	}
}

func runParty(me, n int, addrs []string, f field.Field, alphaShare field.Element, supplier *resource.QueueSupplier) (int64, error) {
	log := logging.GetLogger(me)
	sess, err := network.NewTCPSession(network.Config{Me: me, N: n, Addrs: addrs}, log)
	if err != nil {
		return 0, fmt.Errorf("listening: %w", err)
	}
	defer sess.Close()

	party := spdzshare.Party{Index: me, MacKeyShare: alphaShare}
	store := resource.NewOpenedValueStore()
	nb := &numeric.Builder{Me: me, N: n, Party: party, Field: f, Pool: supplier, Store: store}

	program := func(root *builder.Sequential) *builder.DRes[field.Element] {
		x := nb.Known(root, f.FromInt64(7))
		y := nb.Known(root, f.FromInt64(5))
		prod, err := nb.Mul(root, x, y)
		if err != nil {
			panic(err)
		}
		return nb.Open(root, prod)
	}

	out, err := evaluator.Evaluate[field.Element](sess, program)
	if err != nil {
		return 0, err
	}

	if err := checkOpenedValues(sess, party, f, store); err != nil {
		return 0, fmt.Errorf("mac-check: %w", err)
	}

	return out.BigInt().Int64(), nil
}

// checkOpenedValues runs the joint-randomness coin and the batched
// MAC-check over every value opened so far, clearing the store on
// success. Driven by hand rather than through the builder/evaluator
// graph, since it runs once at the natural end of a batch rather than
// being an operation the online program itself calls for a result.
func checkOpenedValues(sess *network.Session, party spdzshare.Party, f field.Field, store *resource.OpenedValueStore) error {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return err
	}
	coin := maccheck.NewCoin(sess.Me(), sess.NumParties(), seed)
	if err := driveProtocol(sess, 1000, coin); err != nil {
		return err
	}

	check, err := maccheck.NewCheck(sess.Me(), sess.NumParties(), party, f, store.Snapshot(), coin)
	if err != nil {
		return err
	}
	if err := driveProtocol(sess, 2000, check); err != nil {
		return err
	}
	if !check.Passed() {
		return fmt.Errorf("MAC check failed")
	}
	store.Clear()
	return nil
}

// driveProtocol runs a single native protocol to completion over sess,
// starting its rounds at roundBase so it never collides with whatever
// rounds the online-phase evaluator already used on this session.
func driveProtocol(sess *network.Session, roundBase int, proto protocol.NativeProtocol) error {
	for round := 0; ; round++ {
		io, err := proto.NextRound()
		if err != nil {
			return err
		}
		for peer, payload := range io.Send {
			if peer == sess.Me() {
				continue
			}
			if err := sess.Send(roundBase+round, peer, payload); err != nil {
				return err
			}
		}
		received := make(map[int][]byte, len(io.RecvSize))
		for peer := range io.RecvSize {
			if peer == sess.Me() {
				continue
			}
			blob, err := sess.Recv(roundBase+round, peer)
			if err != nil {
				return err
			}
			received[peer] = blob
		}
		status, err := proto.Evaluate(received)
		if err != nil {
			return err
		}
		if status == protocol.Done {
			return nil
		}
	}
}
