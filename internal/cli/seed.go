package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avolkau/librarium/internal/catalog"
	"github.com/avolkau/librarium/internal/entities"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a small sample catalog into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, bookRepo, _, err := openStores()
		if err != nil {
			return err
		}
		defer db.Close()

		existing, err := bookRepo.GetAllBooks()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("catalog already has %d books, refusing to seed", len(existing))
		}

		service := catalog.NewService(bookRepo, catalog.DefaultTerms())
		for _, b := range sampleBooks() {
			book := b
			if err := service.CreateBook(&book); err != nil {
				return fmt.Errorf("seeding %q: %w", b.Title, err)
			}
		}
		fmt.Printf("Seeded %d books\n", len(sampleBooks()))
		return nil
	},
}

func sampleBooks() []entities.Book {
	return []entities.Book{
		{Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Romance", StandNumber: "A-01"},
		{Title: "Moby-Dick", Author: "Herman Melville", Genre: "Adventure", StandNumber: "A-02"},
		{Title: "The Count of Monte Cristo", Author: "Alexandre Dumas", Genre: "Adventure", StandNumber: "A-03"},
		{Title: "Crime and Punishment", Author: "Fyodor Dostoevsky", Genre: "Classic", StandNumber: "B-01"},
		{Title: "Brave New World", Author: "Aldous Huxley", Genre: "Science Fiction", StandNumber: "B-02"},
		{Title: "The Name of the Wind", Author: "Patrick Rothfuss", Genre: "Fantasy", StandNumber: "C-01"},
	}
}
