// Package catalog holds the static plan catalog: plans, their prices and the
// lookups between them.
//
// A Catalog is loaded once from a Source and is read-only afterwards, so it is
// safe for concurrent use without locking.
//
//	cat, err := catalog.New(ctx, catalog.NewYAMLFileSource("plans.yaml"))
//	if err != nil {
//		// misconfigured catalog: fail startup
//	}
//	plan, price, ok := cat.PlanForPrice("pri_pro_monthly")
//
// Two sources ship with the package: NewInMemSource for plans defined in code
// and NewYAMLFileSource for plans kept in a YAML file next to the deployment.
package catalog
