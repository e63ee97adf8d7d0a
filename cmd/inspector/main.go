package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/inquirygate/inquirygate/internal/catalog"
	"github.com/inquirygate/inquirygate/internal/config"
	"github.com/inquirygate/inquirygate/internal/service"
)

// Prints the method catalog and the upstream URL each method resolves to
// under the current configuration.
func main() {
	category := flag.String("category", "", "only list methods of this category")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	relay := service.NewInquiryRelay(cfg.Upstream, nil)

	fmt.Printf("--- Inquiry catalog v%s ---\n", catalog.Version)
	fmt.Printf("Upstream: %s (attempts=%d, timeout=%s)\n\n", cfg.Upstream.BaseURL, cfg.Upstream.RetryAttempts, cfg.Upstream.Timeout())

	grouped := catalog.MethodsByCategory()
	for _, cat := range catalog.Categories() {
		if *category != "" && cat != *category {
			continue
		}
		methods := grouped[cat]
		names := make([]string, 0, len(methods))
		for name := range methods {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Printf("[%s]\n", cat)
		for _, name := range names {
			fmt.Printf("  %-36s %s\n", name, methods[name])
			fmt.Printf("  %-36s -> %s\n", "", relay.Endpoint(name))
		}
		fmt.Println()
	}
}
