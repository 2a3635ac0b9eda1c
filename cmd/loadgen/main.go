// loadgen generates synthetic verification traffic against a running web instance. It either sends the
// requests itself or emits a vegeta target file on stdout for load testing with higher rates.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/mailvet/mailvet/validator"
)

const batchMaxSize = 5000
const alnum = "abcdefghijklmnopqrstuvwxyz0123456789"
const letters = "abcdefghijklmnopqrstuvwxyz"

type checkPayload struct {
	Email        string `json:"email"`
	SkipMX       bool   `json:"skip_mx"`
	SkipDomain   bool   `json:"skip_domain"`
	Alternatives bool   `json:"alternatives"`
}

func main() {
	var (
		numberOfAddresses int64
		domain            string
		host              string
		domainsFromFile   string
		emitTargets       bool
	)

	flag.Int64Var(&numberOfAddresses, "num-addr", 10, "Number of e-mail addresses to generate")
	flag.StringVar(&domain, "domain", "example.org", "Domain to generate addresses for, empty generates random domains")
	flag.StringVar(&domainsFromFile, "read-domains-from", "", "Generate addresses for domains from a CSV file instead. ./path/to.csv")
	flag.StringVar(&host, "host", "http://localhost:1338", "Where is the service running?")
	flag.BoolVar(&emitTargets, "emit-targets", false, "Emit vegeta targets on stdout instead of sending requests")
	flag.Parse()

	if numberOfAddresses <= 0 && domainsFromFile == "" {
		flag.PrintDefaults()
		os.Exit(2)
	}

	var addresses []string
	if domainsFromFile != "" {
		var err error
		addresses, err = addressesFromCSV(domainsFromFile)
		if err != nil {
			fmt.Printf("Unable to read domains: %s\n", err)
			os.Exit(1)
		}
	} else {
		addresses = generateAddresses(numberOfAddresses, domain)
	}

	if emitTargets {
		var out bytes.Buffer
		for _, addr := range addresses {
			out.WriteString(wrapInTargetJSON(host, addr))
		}

		fmt.Println(out.String())
		return
	}

	if err := sendAll(addresses, host); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Aborting: %s\n", err)
		os.Exit(1)
	}
}

func addressesFromCSV(fileName string) ([]string, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	reader := csv.NewReader(file)
	addresses := make([]string, 0, batchMaxSize)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		if len(row) == 0 {
			continue
		}

		if !validator.MightBeAHostOrIP(row[0]) {
			continue
		}

		addresses = append(addresses, `john.doe@`+row[0])
	}

	return addresses, nil
}

func generateAddresses(amount int64, domain string) []string {
	addresses := make([]string, 0, amount)
	for i := int64(0); i < amount; i++ {
		addresses = append(addresses, newEmailAddress(16, domain))
	}

	return addresses
}

func sendAll(addresses []string, host string) error {
	client := &http.Client{
		Transport: &http.Transport{
			IdleConnTimeout: 10 * time.Second,
		},
		Timeout: 30 * time.Second,
	}

	for i, addr := range addresses {
		if i > 0 && i%batchMaxSize == 0 {
			_, _ = fmt.Fprintf(os.Stderr, "Sent [%d/%d]\n", i, len(addresses))
		}

		value, err := json.Marshal(checkPayload{Email: addr, Alternatives: true})
		if err != nil {
			return err
		}

		req, err := http.NewRequest(http.MethodPost, host+"/check", bytes.NewReader(value))
		if err != nil {
			return err
		}

		req.Header.Set("Content-Type", "application/json")

		res, err := client.Do(req)
		if err != nil {
			return err
		}

		_ = res.Body.Close()
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return fmt.Errorf("bad status %d for %q", res.StatusCode, addr)
		}
	}

	return nil
}

func newEmailAddress(length uint, domain string) string {
	var b = make([]byte, length)
	for i := uint(0); i < length; i++ {
		b[i] = alnum[rand.Intn(len(alnum))]
	}

	if len(domain) == 0 {
		var d = make([]byte, 8+rand.Intn(24))

		d[0] = letters[rand.Intn(len(letters))]
		for i, j := 1, len(d); i < j; i++ {
			d[i] = alnum[rand.Intn(len(alnum))]
		}

		domain = string(d) + `.test`
	}

	return string(b) + `@` + domain
}

func wrapInTargetJSON(host, emailAddr string) string {
	var targetTpl = `{"method": "POST", "url": "` + host + `/check", "headers": {"Content-Type": "application/json"}, "body": "%s"}`

	body, _ := json.Marshal(checkPayload{Email: emailAddr, Alternatives: true})
	return fmt.Sprintf(targetTpl+"\n", base64.StdEncoding.EncodeToString(body))
}
