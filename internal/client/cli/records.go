package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/finkeeper/internal/models"
)

func (c *Cli) runAccount(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: finkeeper account add|list|delete")
	}

	switch args[0] {
	case "add":
		flags := flag.NewFlagSet("account add", flag.ContinueOnError)
		name := flags.String("name", "", "Account name")
		balance := flags.Float64("balance", 0, "Opening balance")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" {
			return fmt.Errorf("account name cannot be empty")
		}

		account := &models.Record{Balance: *balance}
		setExtra(account, "name", *name)

		if err := c.data.CreateAccount(ctx, account); err != nil {
			return err
		}
		c.io.Printf("✓ Account created: %s\n", account.ID)
		return nil

	case "list":
		accounts, err := c.data.ListAccounts(ctx)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			c.io.Println("No accounts.")
			return nil
		}
		for _, account := range accounts {
			c.io.Printf("%s  %-20s  balance=%.2f\n",
				account.ID, extraString(account, "name"), account.Balance)
		}
		return nil

	case "delete":
		return c.deleteByID(ctx, args[1:], "account", c.data.DeleteAccount)

	default:
		return fmt.Errorf("unknown account action %q", args[0])
	}
}

func (c *Cli) runCategory(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: finkeeper category add|list|delete")
	}

	switch args[0] {
	case "add":
		flags := flag.NewFlagSet("category add", flag.ContinueOnError)
		name := flags.String("name", "", "Category name")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" {
			return fmt.Errorf("category name cannot be empty")
		}

		category := &models.Record{}
		setExtra(category, "name", *name)

		if err := c.data.CreateCategory(ctx, category); err != nil {
			return err
		}
		c.io.Printf("✓ Category created: %s\n", category.ID)
		return nil

	case "list":
		categories, err := c.data.ListCategories(ctx)
		if err != nil {
			return err
		}
		if len(categories) == 0 {
			c.io.Println("No categories.")
			return nil
		}
		for _, category := range categories {
			c.io.Printf("%s  %s\n", category.ID, extraString(category, "name"))
		}
		return nil

	case "delete":
		return c.deleteByID(ctx, args[1:], "category", c.data.DeleteCategory)

	default:
		return fmt.Errorf("unknown category action %q", args[0])
	}
}

func (c *Cli) runRecurring(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: finkeeper recurring add|list|delete")
	}

	switch args[0] {
	case "add":
		flags := flag.NewFlagSet("recurring add", flag.ContinueOnError)
		name := flags.String("name", "", "Recurring operation name")
		account := flags.String("account", "", "Account ID")
		amount := flags.Float64("amount", 0, "Amount per occurrence")
		schedule := flags.String("schedule", "monthly", "Schedule (daily|weekly|monthly)")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" {
			return fmt.Errorf("recurring operation name cannot be empty")
		}

		recurring := &models.Record{AccountID: *account, Amount: *amount}
		setExtra(recurring, "name", *name)
		setExtra(recurring, "schedule", *schedule)

		if err := c.data.CreateRecurring(ctx, recurring); err != nil {
			return err
		}
		c.io.Printf("✓ Recurring operation created: %s\n", recurring.ID)
		return nil

	case "list":
		list, err := c.data.ListRecurring(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			c.io.Println("No recurring operations.")
			return nil
		}
		for _, recurring := range list {
			c.io.Printf("%s  %-20s  %s  amount=%.2f\n",
				recurring.ID,
				extraString(recurring, "name"),
				extraString(recurring, "schedule"),
				recurring.Amount)
		}
		return nil

	case "delete":
		return c.deleteByID(ctx, args[1:], "recurring operation", c.data.DeleteRecurring)

	default:
		return fmt.Errorf("unknown recurring action %q", args[0])
	}
}

func (c *Cli) runMovement(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: finkeeper movement add|list|delete")
	}

	switch args[0] {
	case "add":
		flags := flag.NewFlagSet("movement add", flag.ContinueOnError)
		account := flags.String("account", "", "Account ID")
		amount := flags.Float64("amount", 0, "Amount (negative for expenses)")
		category := flags.String("category", "", "Category ID")
		note := flags.String("note", "", "Free-form note")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		if *account == "" {
			return fmt.Errorf("account ID cannot be empty")
		}

		movement := &models.Record{AccountID: *account, Amount: *amount}
		if *category != "" {
			setExtra(movement, "category_id", *category)
		}
		if *note != "" {
			setExtra(movement, "note", *note)
		}

		if err := c.data.AddMovement(ctx, movement); err != nil {
			return err
		}
		c.io.Printf("✓ Movement recorded: %s\n", movement.ID)
		return nil

	case "list":
		movements, err := c.data.ListMovements(ctx)
		if err != nil {
			return err
		}
		if len(movements) == 0 {
			c.io.Println("No movements.")
			return nil
		}
		for _, movement := range movements {
			c.io.Printf("%s  account=%s  amount=%.2f  %s\n",
				movement.ID, movement.AccountID, movement.Amount,
				extraString(movement, "note"))
		}
		return nil

	case "delete":
		return c.deleteByID(ctx, args[1:], "movement", c.data.DeleteMovement)

	default:
		return fmt.Errorf("unknown movement action %q", args[0])
	}
}

// deleteByID общий обработчик команд удаления
func (c *Cli) deleteByID(ctx context.Context, args []string, what string, del func(context.Context, string) error) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: finkeeper ... delete ID")
	}

	id := args[0]
	if err := del(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", what, id, err)
	}

	c.io.Printf("✓ Deleted %s: %s\n", what, id)
	return nil
}
