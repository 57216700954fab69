// Command shadow_compare replays a set of read-only requests against the Go
// API and the legacy Python API and reports status/body differences. Used
// during the cutover to verify the two backends serve the same timetables.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Name     string `json:"name"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

type outcome struct {
	target       target
	goStatus     int
	legacyStatus int
	statusMatch  bool
	bodyMatch    bool
	goDur        time.Duration
	legacyDur    time.Duration
	err          error
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		token       string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8000", "legacy API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "path to targets file")
	flag.StringVar(&token, "token", os.Getenv("SHADOW_TOKEN"), "bearer token for protected routes")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var breaking, optional int

	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, tgt := range targets {
		res := run(client, goBase, legacyBase, token, tgt)
		report(res)
		if res.err != nil || !res.statusMatch || !res.bodyMatch {
			if tgt.Critical {
				breaking++
			} else {
				optional++
			}
		}
	}

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tf targetsFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, err
	}
	if len(tf.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return tf.Targets, nil
}

func run(client *http.Client, goBase, legacyBase, token string, tgt target) outcome {
	res := outcome{target: tgt}

	goStatus, goBody, goDur, err := fetch(client, goBase, token, tgt)
	if err != nil {
		res.err = fmt.Errorf("go request: %w", err)
		return res
	}
	legacyStatus, legacyBody, legacyDur, err := fetch(client, legacyBase, token, tgt)
	if err != nil {
		res.err = fmt.Errorf("legacy request: %w", err)
		return res
	}

	res.goStatus = goStatus
	res.legacyStatus = legacyStatus
	res.goDur = goDur
	res.legacyDur = legacyDur
	res.statusMatch = goStatus == legacyStatus
	res.bodyMatch = bodiesEqual(goBody, legacyBody)
	return res
}

func fetch(client *http.Client, base, token string, tgt target) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// bodiesEqual compares payloads structurally. The Go side wraps results in a
// response envelope while the legacy side returns the data object directly,
// so when one body carries a "data" key and the other does not, the data
// value alone is compared.
func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	aj = unwrapEnvelope(aj)
	bj = unwrapEnvelope(bj)
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func unwrapEnvelope(v interface{}) interface{} {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	data, hasData := obj["data"]
	if !hasData {
		return v
	}
	for key := range obj {
		if key != "data" && key != "error" && key != "meta" {
			return v
		}
	}
	return data
}

// normalize rewrites whole-valued floats as integers so the two backends'
// JSON number encodings compare equal.
func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(res outcome) {
	status := "OK"
	if res.err != nil {
		status = "ERROR"
	} else if !res.statusMatch || !res.bodyMatch {
		status = "DIFF"
	}
	fmt.Printf("[%s] %s: %s %s\n", status, res.target.Name, res.target.Method, res.target.Path)
	if res.err != nil {
		fmt.Printf("  Error: %v\n", res.err)
		return
	}
	fmt.Printf("  Go: %d (%s) | Legacy: %d (%s)\n", res.goStatus, res.goDur, res.legacyStatus, res.legacyDur)
	fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.statusMatch, res.bodyMatch, res.target.Critical)
}
