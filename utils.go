package main

import (
	"fmt"
	"net/http"

	"github.com/contentsquare/cyclecounter/log"
)

func respondWith(rw http.ResponseWriter, err error, status int) {
	log.Errorf("%s", err)
	rw.WriteHeader(status)
	fmt.Fprintf(rw, "%s\n", err)
}
