// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CuteXiaoKe/pdf"
	"github.com/CuteXiaoKe/pdf/compare"
)

func (a *app) newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info OUT CMP",
		Short: "Compare the document information dictionaries",
		Long: `Compare the title, author, subject and keywords of two PDF files.
The names of all differing entries are printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := pdf.Open(args[0])
			if err != nil {
				return err
			}
			defer out.Close()
			cmp, err := pdf.Open(args[1])
			if err != nil {
				return err
			}
			defer cmp.Close()

			keys, err := compare.New(out, cmp, nil).CompareDocumentInfo()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			styles := NewStyles(IsColorEnabled(a.color, w))
			if len(keys) == 0 {
				_, err = fmt.Fprintln(w, styles.Success.Render("Document information is equal."))
				return err
			}
			for _, key := range keys {
				_, err = fmt.Fprintf(w, "%s %s\n",
					styles.Message.Render("different:"), styles.Value.Render(pdf.Format(key)))
				if err != nil {
					return err
				}
			}
			return ErrDifferencesFound
		},
	}
}
