// Package aaisp provides a Go client for the Andrews & Arnold CHAOS broadband
// status API.
//
// The client authenticates with the account's control login and password,
// fetches the telemetry of every line (service) on the account in one request,
// and keeps it in memory keyed by service ID. Accessors convert raw bit and
// byte counts into human units.
//
//	client, err := aaisp.New(os.Getenv("AAISP_USERNAME"), os.Getenv("AAISP_PASSWORD"))
//	if err != nil {
//	    return err
//	}
//	ids, _ := client.Services(ctx)
//	for _, id := range ids {
//	    down, _ := client.TxRate(ctx, id, aaisp.FormatMBits, aaisp.DefaultPrecision)
//	    left, _ := client.UsageRemaining(ctx, id, aaisp.FormatGBytes, aaisp.DefaultPrecision)
//	    fmt.Printf("%d: %.1f Mbit/s, %.1f GB left\n", id, down, left)
//	}
//
// Accessors serve from the cache and issue a single info request on a miss.
// Info always refetches and replaces the cache.
package aaisp
