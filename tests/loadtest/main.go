package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numProfiles  = 200
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== sessiond Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Profiles: %d\n\n", numWorkers, testDuration, numProfiles)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding state (PUT /state) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doPutState(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (30% PUT, 70% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doPutState(rng)
		case r < 0.65:
			return doGetState()
		case r < 0.95:
			return doGetProfile(rng)
		default:
			return doSignOut()
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (5% PUT, 95% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doPutState(rng)
		case r < 0.60:
			return doGetState()
		default:
			return doGetProfile(rng)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func profileID(n int) string {
	return fmt.Sprintf("did:plc:load%04d", n)
}

func doPutState(rng *rand.Rand) result {
	nProfiles := rng.Intn(5) + 1
	profiles := make(map[string]interface{}, nProfiles)
	for i := 0; i < nProfiles; i++ {
		profiles[profileID(rng.Intn(numProfiles))] = map[string]interface{}{
			"preferences": map[string]interface{}{
				"local": map[string]interface{}{
					"lastViewedHomeTimelineUri": "following",
					"useDynamicTheming":         rng.Intn(2) == 1,
				},
			},
		}
	}
	body := map[string]interface{}{
		"auth": map[string]interface{}{
			"bearer": map[string]interface{}{
				"authProfileId": profileID(rng.Intn(numProfiles)),
				"accessJwt":     fmt.Sprintf("access-%d", rng.Int63()),
				"refreshJwt":    fmt.Sprintf("refresh-%d", rng.Int63()),
			},
		},
		"profileData": profiles,
	}

	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, baseURL+"/state", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return send("PUT /state", req)
}

func doGetState() result {
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/state", nil)
	return send("GET /state", req)
}

func doGetProfile(rng *rand.Rand) result {
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/profile?id="+profileID(rng.Intn(numProfiles)), nil)
	r := send("GET /profile", req)
	if r.status == http.StatusNotFound {
		r.err = false
	}
	return r
}

func doSignOut() result {
	req, _ := http.NewRequest(http.MethodDelete, baseURL+"/auth", nil)
	return send("DELETE /auth", req)
}

func send(endpoint string, req *http.Request) result {
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
