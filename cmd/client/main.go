package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// selection finds the ids of the listed people in the page.
var selection = regexp.MustCompile(`name="selections" value="(\d+)"`)

// client does not follow redirects so that every measurement covers exactly one request.
var client = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080/people
func main() {
	urlPtr := flag.String("url", "http://localhost:8080/people", "the people page of the service")
	flag.Parse()

	person := url.Values{
		"firstName":   {"Marcus"},
		"lastName":    {"Antonius"},
		"dateOfBirth": {"1983-01-14"},
		"email":       {"marcus@antonius.example"},
		"salary":      {"4711.00"},
	}

	fmt.Println()
	fmt.Println("  Elements    CREATE      EDIT      LIST    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{10, 50, 100, 500, 1000}
	for _, loops := range sizes {
		before := listIds(*urlPtr)
		fmt.Printf("%10d", loops)
		{
			// create
			var duration int64
			for i := 0; i < loops; i++ {
				duration += sendForm(*urlPtr, person, http.StatusSeeOther)
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		ids := newIds(before, listIds(*urlPtr))
		{
			// edit
			f := func(id int64) int64 {
				return sendForm(*urlPtr, url.Values{"edit": {strconv.FormatInt(id, 10)}}, http.StatusOK)
			}
			callInLoop(ids, f)
		}
		{
			// list
			f := func(int64) int64 {
				_, _, d := sendRequest(http.MethodGet, *urlPtr, nil, "")
				return d
			}
			callInLoop(ids, f)
		}
		{
			// delete, one person per request
			f := func(id int64) int64 {
				form := url.Values{"delete": {"true"}, "selections": {strconv.FormatInt(id, 10)}}
				return sendForm(*urlPtr, form, http.StatusSeeOther)
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

func callInLoop(ids []int64, f func(id int64) int64) {
	shuffled := append([]int64(nil), ids...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	if len(shuffled) == 0 {
		fmt.Printf("%10s", "-")
		return
	}
	fmt.Printf("%10d", duration/int64(len(shuffled)*1000))
}

// listIds returns the ids of everybody on the list page.
func listIds(pageURL string) map[int64]bool {
	_, body, _ := sendRequest(http.MethodGet, pageURL, nil, "")
	ids := make(map[int64]bool)
	for _, match := range selection.FindAllSubmatch(body, -1) {
		id, err := strconv.ParseInt(string(match[1]), 10, 64)
		if err == nil {
			ids[id] = true
		}
	}
	return ids
}

func newIds(before map[int64]bool, after map[int64]bool) []int64 {
	var ids []int64
	for id := range after {
		if !before[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func sendForm(pageURL string, form url.Values, expectedStatus int) int64 {
	status, _, duration := sendRequest(http.MethodPost, pageURL, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if status != expectedStatus {
		err := fmt.Errorf("expected status %d, got %d", expectedStatus, status)
		fmt.Println("unexpected response", err)
		panic(err)
	}
	return duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader, contentType string) (int, []byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	before := time.Now().UnixNano()
	res, err := client.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	return res.StatusCode, resBody, after - before
}
