/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Binary netviz serves choropleth and flow diagram data for result batches
// posted by the host query layer.
//
// Flags default to the like-named NETVIZ_ environment variables, which may be
// set in a .env file in the working directory.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/ilhamster/netviz/logger"
	"github.com/ilhamster/netviz/service"
	"github.com/joho/godotenv"
)

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func main() {
	_ = godotenv.Load(".env")
	log := logger.Setup()

	port := flag.Int("port", envIntOr("NETVIZ_PORT", 7410), "Port to serve netviz clients on")
	cacheCapacity := flag.Int("cache_capacity", envIntOr("NETVIZ_CACHE_CAPACITY", 16), "The number of result batches to hold")
	geoData := flag.String("geo_data", envOr("NETVIZ_GEO_DATA", ""), "A GeoJSON file of country geometry to use instead of the bundled one")
	flag.Parse()

	svc, err := service.New(service.Config{
		CacheCapacity: *cacheCapacity,
		GeoDataFile:   *geoData,
		Logger:        log,
	})
	if err != nil {
		log.Error("failed to create netviz service", "error", err)
		os.Exit(1)
	}
	mux := http.NewServeMux()
	svc.RegisterHandlers(mux)

	addr := fmt.Sprintf(":%d", *port)
	log.Info("serving netviz", "addr", addr, "cache_capacity", *cacheCapacity)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("netviz server failed", "error", err)
		os.Exit(1)
	}
}
