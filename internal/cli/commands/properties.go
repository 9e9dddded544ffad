package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/estatly/estatly/internal/api/property"
	"github.com/estatly/estatly/internal/cli/output"
)

// NewPropertiesCmd creates the properties command group
func NewPropertiesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"property", "props"},
		Short:   "Browse and manage property listings",
	}

	cmd.AddCommand(newPropertiesListCmd(app))
	cmd.AddCommand(newPropertiesGetCmd(app))
	cmd.AddCommand(newPropertiesFeaturedCmd(app))
	cmd.AddCommand(newPropertiesCreateCmd(app))
	cmd.AddCommand(newPropertiesUpdateCmd(app))
	cmd.AddCommand(newPropertiesDeleteCmd(app))

	return cmd
}

// addListFlags binds the filter flags shared with admin properties
func addListFlags(flags *pflag.FlagSet, params *property.ListParams) {
	flags.IntVar(&params.Page, "page", 0, "Page number")
	flags.IntVar(&params.Limit, "limit", 0, "Results per page")
	flags.StringVar(&params.Search, "search", "", "Free text search")
	flags.StringVar(&params.Type, "type", "", "Property type")
	flags.StringVar(&params.City, "city", "", "City")
	flags.Float64Var(&params.MinPrice, "min-price", 0, "Minimum price")
	flags.Float64Var(&params.MaxPrice, "max-price", 0, "Maximum price")
	flags.IntVar(&params.Bedrooms, "bedrooms", 0, "Minimum number of bedrooms")
	flags.StringVar(&params.Sort, "sort", "", "Sort order (price_asc, price_desc)")
}

func newPropertiesListCmd(app *App) *cobra.Command {
	var params property.ListParams

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List active properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			page, err := portal.Properties.List(cmd.Context(), params).Unwrap()
			if err != nil {
				return err
			}
			return printPage(printer, page)
		},
	}

	addListFlags(cmd.Flags(), &params)

	return cmd
}

func printPage(printer *output.Printer, page property.Page) error {
	if len(page.Properties) == 0 && printer.Format() == output.FormatTable {
		printer.Infof("No properties found.")
		return nil
	}

	if err := printer.Print(page, func() output.Table { return propertiesTable(page.Properties) }); err != nil {
		return err
	}

	p := page.Pagination
	printer.Infof("\nPage %d of %d (%d total)", p.Page, p.TotalPages, p.Total)
	return nil
}

func propertiesTable(properties []property.Property) output.Table {
	t := output.Table{Header: []string{"ID", "TITLE", "TYPE", "CITY", "PRICE", "BEDS", "STATUS"}}
	for _, p := range properties {
		t.Rows = append(t.Rows, []string{
			p.ID,
			p.Title,
			p.Type,
			p.City,
			formatPrice(p.Price),
			strconv.Itoa(p.Bedrooms),
			p.Status,
		})
	}
	return t
}

func propertyTable(p property.Property) output.Table {
	return output.KeyValues(
		"ID", p.ID,
		"Title", p.Title,
		"Type", p.Type,
		"Status", p.Status,
		"Price", formatPrice(p.Price),
		"Address", p.Address,
		"City", p.City,
		"State", p.State,
		"Country", p.Country,
		"Bedrooms", strconv.Itoa(p.Bedrooms),
		"Bathrooms", strconv.Itoa(p.Bathrooms),
		"Featured", fmt.Sprint(p.Featured),
		"Owner", p.OwnerID,
	)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newPropertiesGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			p, err := portal.Properties.Get(cmd.Context(), args[0]).Unwrap()
			if err != nil {
				return err
			}
			return printer.Print(p, func() output.Table { return propertyTable(p) })
		},
	}
}

func newPropertiesFeaturedCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			featured, err := portal.Properties.Featured(cmd.Context(), limit).Unwrap()
			if err != nil {
				return err
			}
			if len(featured) == 0 && printer.Format() == output.FormatTable {
				printer.Infof("No featured properties.")
				return nil
			}
			return printer.Print(featured, func() output.Table { return propertiesTable(featured) })
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of properties")

	return cmd
}

// addInputFlags binds the create/update body flags
func addInputFlags(flags *pflag.FlagSet, in *property.Input) {
	flags.StringVar(&in.Title, "title", "", "Title")
	flags.StringVar(&in.Description, "description", "", "Description")
	flags.StringVar(&in.Type, "type", "", "Type (house, apartment, condo, land, commercial, villa)")
	flags.Float64Var(&in.Price, "price", 0, "Asking price")
	flags.StringVar(&in.Address, "address", "", "Street address")
	flags.StringVar(&in.City, "city", "", "City")
	flags.StringVar(&in.State, "state", "", "State or region")
	flags.StringVar(&in.Country, "country", "", "Country")
	flags.IntVar(&in.Bedrooms, "bedrooms", 0, "Bedrooms")
	flags.IntVar(&in.Bathrooms, "bathrooms", 0, "Bathrooms")
	flags.Float64Var(&in.Area, "area", 0, "Floor area")
	flags.StringSliceVar(&in.Images, "image", nil, "Image URL (repeatable)")
	flags.BoolVar(&in.Featured, "featured", false, "Mark as featured")
}

func newPropertiesCreateCmd(app *App) *cobra.Command {
	var in property.Input

	cmd := &cobra.Command{
		Use:   "create",
		Short: "List a new property",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Validate(in); err != nil {
				return err
			}

			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			p, err := portal.Properties.Create(cmd.Context(), in).Unwrap()
			if err != nil {
				return err
			}

			printer.Successf("Property created: %s", p.ID)
			return printer.Print(p, func() output.Table { return propertyTable(p) })
		},
	}

	addInputFlags(cmd.Flags(), &in)

	return cmd
}

func newPropertiesUpdateCmd(app *App) *cobra.Command {
	var in property.Input

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit one of your properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			current, err := portal.Properties.Get(cmd.Context(), args[0]).Unwrap()
			if err != nil {
				return err
			}

			merged := mergeInput(current, in, cmd.Flags())
			if err := app.Validate(merged); err != nil {
				return err
			}

			p, err := portal.Properties.Update(cmd.Context(), args[0], merged).Unwrap()
			if err != nil {
				return err
			}

			printer.Successf("Property updated")
			return printer.Print(p, func() output.Table { return propertyTable(p) })
		},
	}

	addInputFlags(cmd.Flags(), &in)

	return cmd
}

// mergeInput starts from the stored listing and overlays the flags that were set
func mergeInput(current property.Property, in property.Input, flags *pflag.FlagSet) property.Input {
	out := property.Input{
		Title:       current.Title,
		Description: current.Description,
		Type:        current.Type,
		Price:       current.Price,
		Address:     current.Address,
		City:        current.City,
		State:       current.State,
		Country:     current.Country,
		Bedrooms:    current.Bedrooms,
		Bathrooms:   current.Bathrooms,
		Area:        current.Area,
		Images:      current.Images,
		Featured:    current.Featured,
	}

	overlay := map[string]func(){
		"title":       func() { out.Title = in.Title },
		"description": func() { out.Description = in.Description },
		"type":        func() { out.Type = in.Type },
		"price":       func() { out.Price = in.Price },
		"address":     func() { out.Address = in.Address },
		"city":        func() { out.City = in.City },
		"state":       func() { out.State = in.State },
		"country":     func() { out.Country = in.Country },
		"bedrooms":    func() { out.Bedrooms = in.Bedrooms },
		"bathrooms":   func() { out.Bathrooms = in.Bathrooms },
		"area":        func() { out.Area = in.Area },
		"image":       func() { out.Images = in.Images },
		"featured":    func() { out.Featured = in.Featured },
	}
	flags.Visit(func(f *pflag.Flag) {
		if set, ok := overlay[f.Name]; ok {
			set()
		}
	})

	return out
}

func newPropertiesDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := app.confirm(yes, fmt.Sprintf("Delete property %s", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("aborted")
			}

			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			res := portal.Properties.Delete(cmd.Context(), args[0])
			if _, err := res.Unwrap(); err != nil {
				return err
			}

			printer.Successf("Property %s deleted", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
