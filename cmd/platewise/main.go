package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"platewise/internal/alternatives"
	"platewise/internal/clipper"
	"platewise/internal/config"
	"platewise/internal/credits"
	"platewise/internal/database"
	"platewise/internal/gen"
	"platewise/internal/grocery"
	"platewise/internal/llm"
	"platewise/internal/logging"
	"platewise/internal/mealplan"
	"platewise/internal/recipes"
	"platewise/internal/suggest"
	"platewise/internal/usage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	textGen, closeGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s client: %v", cfg.Provider, err)
	}
	defer closeGen()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	invoker := gen.NewInvoker(textGen, cfg.GenerationTimeout)
	guard := gen.NewInflightGuard()
	creditStore := credits.NewStore(db.SQL)
	usageStore := usage.NewStore(db.SQL, logger)

	planService := mealplan.NewService(invoker, guard, creditStore, usageStore, mealplan.NewRepository(db.SQL), logger)
	recipeService := recipes.NewService(invoker, guard, creditStore, usageStore, recipes.NewRepository(db.SQL), logger)
	altService := alternatives.NewService(invoker, guard, creditStore, usageStore, logger)
	groceryService := grocery.NewService(invoker, guard, creditStore, usageStore, grocery.NewRepository(db.SQL), logger)
	suggestService := suggest.NewService(invoker, guard, creditStore, usageStore, logger)
	recipeClipper := clipper.NewClipper(invoker, recipes.NewRepository(db.SQL), usageStore, logger)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "plan":
		cmd := flag.NewFlagSet("plan", flag.ExitOnError)
		user := cmd.String("user", "cli", "User ID")
		days := cmd.Int("days", 3, "Number of days to plan")
		calories := cmd.Int("calories", 0, "Daily calorie target")
		protein := cmd.Int("protein", 0, "Daily protein target in grams")
		cuisines := cmd.String("cuisines", "", "Comma-separated preferred cuisines")
		restrictions := cmd.String("restrictions", "", "Comma-separated dietary restrictions")
		cmd.Parse(os.Args[2:])

		plan, _, err := planService.Generate(ctx, *user, mealplan.Request{
			Days:           *days,
			TargetCalories: *calories,
			TargetProtein:  *protein,
			Cuisines:       splitFlag(*cuisines),
			Restrictions:   splitFlag(*restrictions),
		})
		if err != nil {
			log.Fatalf("Plan generation failed: %v", err)
		}
		printJSON(plan)

	case "recipes":
		cmd := flag.NewFlagSet("recipes", flag.ExitOnError)
		user := cmd.String("user", "cli", "User ID")
		ingredients := cmd.String("ingredients", "", "Comma-separated ingredients on hand")
		cuisine := cmd.String("cuisine", "", "Preferred cuisine")
		cmd.Parse(os.Args[2:])

		found, _, err := recipeService.Find(ctx, *user, recipes.Request{
			Ingredients: splitFlag(*ingredients),
			Cuisine:     *cuisine,
		})
		if err != nil {
			log.Fatalf("Recipe search failed: %v", err)
		}
		printJSON(found)

	case "swap":
		cmd := flag.NewFlagSet("swap", flag.ExitOnError)
		user := cmd.String("user", "cli", "User ID")
		dish := cmd.String("dish", "", "Dish to find healthier alternatives for")
		cmd.Parse(os.Args[2:])

		alts, _, err := altService.Suggest(ctx, *user, alternatives.Request{Dish: *dish})
		if err != nil {
			log.Fatalf("Alternatives generation failed: %v", err)
		}
		printJSON(alts)

	case "grocery":
		cmd := flag.NewFlagSet("grocery", flag.ExitOnError)
		user := cmd.String("user", "cli", "User ID")
		meals := cmd.String("meals", "", "Semicolon-separated meals to shop for")
		servings := cmd.Int("servings", 0, "Servings per meal")
		cmd.Parse(os.Args[2:])

		list, _, err := groceryService.Generate(ctx, *user, grocery.Request{
			Meals:    splitSemicolons(*meals),
			Servings: *servings,
		})
		if err != nil {
			log.Fatalf("Grocery list generation failed: %v", err)
		}
		printJSON(list)

	case "suggest":
		cmd := flag.NewFlagSet("suggest", flag.ExitOnError)
		user := cmd.String("user", "cli", "User ID")
		mealType := cmd.String("meal", "", "Meal type (breakfast, lunch, dinner, snack)")
		minutes := cmd.Int("minutes", 0, "Minutes available to cook")
		ingredients := cmd.String("ingredients", "", "Comma-separated ingredients on hand")
		cmd.Parse(os.Args[2:])

		s, _, err := suggestService.Suggest(ctx, *user, suggest.Request{
			MealType:      *mealType,
			TimeAvailable: *minutes,
			Ingredients:   splitFlag(*ingredients),
		})
		if err != nil {
			log.Fatalf("Suggestion failed: %v", err)
		}
		printJSON(s)

	case "clip":
		cmd := flag.NewFlagSet("clip", flag.ExitOnError)
		user := cmd.String("user", "cli", "User ID")
		url := cmd.String("url", "", "Recipe page URL")
		cmd.Parse(os.Args[2:])

		rec, id, err := recipeClipper.ClipURL(ctx, *user, *url)
		if err != nil {
			log.Fatalf("Clipping failed: %v", err)
		}
		fmt.Printf("Saved recipe %s\n", id)
		printJSON(rec)

	case "credits":
		cmd := flag.NewFlagSet("credits", flag.ExitOnError)
		user := cmd.String("user", "cli", "User ID")
		grant := cmd.Int("grant", 0, "Credits to grant (0 to just show the balance)")
		cmd.Parse(os.Args[2:])

		if *grant > 0 {
			if err := creditStore.Grant(ctx, *user, *grant, "manual"); err != nil {
				log.Fatalf("Grant failed: %v", err)
			}
		}
		balance, err := creditStore.Balance(ctx, *user)
		if err != nil {
			log.Fatalf("Balance lookup failed: %v", err)
		}
		fmt.Printf("User %s has %d credits.\n", *user, balance)

	case "usage-report":
		cmd := flag.NewFlagSet("usage-report", flag.ExitOnError)
		days := cmd.Int("days", 7, "Days to cover")
		cmd.Parse(os.Args[2:])

		rollups, err := usageStore.GetDailyUsage(ctx, *days)
		if err != nil {
			log.Fatalf("Usage report failed: %v", err)
		}
		printJSON(rollups)

	case "usage-cleanup":
		cmd := flag.NewFlagSet("usage-cleanup", flag.ExitOnError)
		days := cmd.Int("days", 30, "Keep records for the last N days")
		cmd.Parse(os.Args[2:])

		affected, err := usageStore.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Removed %d old usage records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// newTextGenerator picks the configured provider. The returned close function
// is a no-op for providers without a connection to tear down.
func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, func(), error) {
	switch cfg.Provider {
	case "groq":
		return llm.NewGroqClient(cfg, cfg.GroqModel, 0.3), func() {}, nil
	default:
		client, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {}
		if closer, ok := client.(llm.Closer); ok {
			closeFn = func() { closer.Close() }
		}
		return client, closeFn, nil
	}
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render output: %v", err)
	}
	fmt.Println(string(out))
}

func splitFlag(raw string) []string {
	return splitOn(raw, ",")
}

func splitSemicolons(raw string) []string {
	return splitOn(raw, ";")
}

func splitOn(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printUsage() {
	fmt.Println("Usage: platewise <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan           Generate a multi-day meal plan")
	fmt.Println("  recipes        Find recipes for ingredients on hand")
	fmt.Println("  swap           Suggest healthier alternatives for a dish")
	fmt.Println("  grocery        Build a shopping list for a set of meals")
	fmt.Println("  suggest        Suggest a single meal")
	fmt.Println("  clip           Import a recipe from a URL")
	fmt.Println("  credits        Show or grant a user's credits")
	fmt.Println("  usage-report   Show daily generation totals")
	fmt.Println("  usage-cleanup  Remove old usage records")
}
