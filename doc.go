// Package matevo evolves fixed-size real matrices toward a higher (or lower)
// rating with two metaheuristics running over isolated blocks.
//
// EVO blocks run a generational evolutionary algorithm: parent pairs are
// recombined cell by cell, children are mutated within a sparsity band and
// the best individuals of parents and children survive. PSO blocks run a
// particle swarm where each particle follows its personal best and the
// block's global best. Blocks share nothing but a read-only evaluator, and
// each block seeds its own random stream, so a run is reproducible no matter
// how many blocks step in parallel.
//
// Basic usage:
//
//	// Load configuration
//	config, err := matevo.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Build the configured rule set, or pass any rating.Evaluator
//	rules, err := config.RuleSet()
//	if err != nil {
//		log.Fatalf("Error building rules: %v", err)
//	}
//
//	orch, err := matevo.NewOrchestrator(config, rules)
//	if err != nil {
//		log.Fatalf("Error creating orchestrator: %v", err)
//	}
//
//	best, err := orch.Run(context.Background(), config.StopCondition())
//	if err != nil {
//		log.Fatalf("Run failed: %v", err)
//	}
//	fmt.Printf("block %d reached %.4f\n%v\n", best.Block, best.Rating, best.Matrix)
package matevo
