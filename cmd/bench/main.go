// Command bench runs a synthetic workload against the off-heap entry table (or a reference cache) and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/IvanBrykalov/offheap/arena"
	"github.com/IvanBrykalov/offheap/internal/util"
	pmet "github.com/IvanBrykalov/offheap/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		kind      = flag.String("engine", "offheap", "cache engine: offheap | freecache | bigcache | gocache")
		arenas    = flag.Int("arenas", 0, "number of arenas (0=auto)")
		arenaMiB  = flag.Int("arena-mib", 64, "size of each arena in MiB")
		backing   = flag.String("backing", "mmap", "arena backing: mmap | heap")
		buckets   = flag.Int("buckets", 1<<20, "hash table buckets (rounded up to a power of two)")
		valueSize = flag.Int("value-size", 128, "maximum value size in bytes")

		workers  = flag.IntP("workers", "w", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.DurationP("duration", "d", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")
		delPct   = flag.Int("deletes", 2, "delete percentage of writes [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf-s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf-v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = keys/2)")

		configPath  = flag.StringP("config", "c", "", "JSONC workload profile; keys are flag names, command-line flags win")
		reportPath  = flag.String("report", "", "write a JSON summary to this file")
		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	if *configPath != "" {
		if err := applyConfig(flag.CommandLine, *configPath); err != nil {
			log.Fatal(err)
		}
	}

	var back arena.Backing
	switch *backing {
	case "mmap":
		back = arena.BackingMmap
	case "heap":
		back = arena.BackingHeap
	default:
		log.Fatalf("unknown backing: %q (use mmap or heap)", *backing)
	}
	if *buckets <= 0 || *keys <= 0 || *valueSize <= 0 {
		log.Fatal("buckets, keys and value-size must be positive")
	}
	arenasN := *arenas
	if arenasN <= 0 {
		arenasN = util.ReasonableArenaCount()
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "offheap", "arena", prometheus.Labels{"engine": *kind})
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build engine ----
	var (
		pool *arena.Pool
		tbl  *table
	)
	eng, err := newEngine(*kind, int64(arenasN)*int64(*arenaMiB)<<20, func() (engine, error) {
		var err error
		pool, err = arena.NewPool(arena.PoolOptions{
			Arenas:    arenasN,
			ArenaSize: int64(*arenaMiB) << 20,
			Backing:   back,
			Metrics:   metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("pool: %w", err)
		}
		tbl = newTable(pool, *buckets)
		return tableEngine{tbl}, nil
	})
	if err != nil {
		log.Fatal(err)
	}
	if pool != nil {
		defer func() { _ = pool.Close() }()
	}
	defer eng.Close()

	// ---- Preload half the keyspace to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = *keys / 2
	}
	value := make([]byte, *valueSize)
	for i := range value {
		value[i] = byte('a' + i%26)
	}
	for i := 0; i < pl; i++ {
		k := "k:" + strconv.Itoa(i)
		if err := eng.Put([]byte(k), value[:1+i%len(value)]); err != nil {
			log.Fatalf("preload %s: %v", k, err)
		}
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	delPctVal := *delPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var reads, writes, deletes, hits, misses, failed, total, readBytes uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			buf := make([]byte, 0, 32)
			keyByZipf := func() []byte {
				buf = strconv.AppendUint(append(buf[:0], "k:"...), localZipf.Uint64(), 10)
				return buf
			}
			consume := func(v []byte) {
				atomic.AddUint64(&readBytes, uint64(len(v)))
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				switch {
				case int(localR.Int31n(100)) < readPctVal:
					atomic.AddUint64(&reads, 1)
					if eng.Get(keyByZipf(), consume) {
						atomic.AddUint64(&hits, 1)
					} else {
						atomic.AddUint64(&misses, 1)
					}
				case int(localR.Int31n(100)) < delPctVal:
					atomic.AddUint64(&deletes, 1)
					eng.Delete(keyByZipf())
				default:
					atomic.AddUint64(&writes, 1)
					n := 1 + localR.Intn(len(value))
					if err := eng.Put(keyByZipf(), value[:n]); err != nil {
						atomic.AddUint64(&failed, 1)
					}
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	r := report{
		Engine:  *kind,
		Workers: workersN,
		Keys:    *keys,
		Seconds: elapsed.Seconds(),
		Ops:     atomic.LoadUint64(&total),
		Reads:   atomic.LoadUint64(&reads),
		Writes:  atomic.LoadUint64(&writes),
		Deletes: atomic.LoadUint64(&deletes),
		Failed:  atomic.LoadUint64(&failed),
		Hits:    atomic.LoadUint64(&hits),
		Misses:  atomic.LoadUint64(&misses),
		Entries: eng.Len(),
	}
	r.OpsPerSec = float64(r.Ops) / elapsed.Seconds()
	if r.Reads > 0 {
		r.HitRate = float64(r.Hits) / float64(r.Reads) * 100
	}

	fmt.Printf("engine=%s workers=%d keys=%d dur=%v seed=%d\n",
		*kind, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  deletes=%d  failed=%d\n",
		r.Ops, r.OpsPerSec, r.Reads, r.Writes, r.Deletes, r.Failed)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  read=%d bytes  entries=%d\n",
		r.Hits, r.Misses, r.HitRate, atomic.LoadUint64(&readBytes), r.Entries)
	if pool != nil {
		st := pool.Stats()
		r.Evictions, r.LiveBytes, r.AllocFails = tbl.Evictions(), st.Live, st.Fails
		fmt.Printf("backing=%s arenas=%d arena=%dMiB  evictions=%d  live=%d/%d bytes  allocs=%d  frees=%d  alloc-fails=%d\n",
			back, pool.Len(), *arenaMiB, r.Evictions, st.Live, st.Capacity, st.Allocs, st.Frees, st.Fails)
	}

	if *reportPath != "" {
		if err := writeReport(*reportPath, r); err != nil {
			log.Fatal(err)
		}
	}
}
