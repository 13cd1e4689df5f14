package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/inventory-service/internal/adapter/handler/pb"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "inventory gRPC address")
	apiKey := flag.String("api-key", "", "inventory API key")
	productID := flag.Int64("product", 1, "product id to purchase")
	initialStock := flag.Int("stock", 20, "stock to seed before the run")
	totalRequests := flag.Int("requests", 50, "concurrent single-unit purchases")
	flag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	client := pb.NewInventoryServiceClient(conn)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-api-key", *apiKey)

	// Seed stock
	if _, err := client.SetQuantity(ctx, &pb.SetQuantityRequest{
		ProductId: *productID,
		Quantity:  int32(*initialStock),
	}); err != nil {
		log.Fatalf("failed to set stock: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var conflictCount atomic.Int32
	var otherCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := client.Purchase(ctx, &pb.PurchaseRequest{ProductId: *productID, Quantity: 1})
			switch status.Code(err) {
			case codes.OK:
				successCount.Add(1)
			case codes.FailedPrecondition:
				soldOutCount.Add(1)
			case codes.Aborted:
				conflictCount.Add(1)
			default:
				otherCount.Add(1)
				log.Printf("purchase failed: %v", err)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", soldOutCount.Load())
	fmt.Printf("Conflicts:        %d\n", conflictCount.Load())
	fmt.Printf("Other Failures:   %d\n", otherCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	inv, err := client.GetInventory(ctx, &pb.GetInventoryRequest{ProductId: *productID})
	if err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}
	finalStock := int(inv.GetQuantity())
	fmt.Printf("Final Stock:      %d\n", finalStock)

	// Assertions
	if finalStock < 0 || int(success)+finalStock != *initialStock {
		fmt.Printf("FAIL: oversold, %d sold with %d left from %d\n", success, finalStock, *initialStock)
		return
	}
	expected := min(*initialStock, *totalRequests)
	if int(success) == expected && finalStock == *initialStock-expected {
		fmt.Printf("PASS: exactly %d purchases succeeded\n", expected)
	} else {
		fmt.Printf("PASS (no oversell): %d of %d purchases succeeded, %d rejected as conflicts\n",
			success, expected, conflictCount.Load())
	}
}
