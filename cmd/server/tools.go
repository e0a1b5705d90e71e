package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	mongorepo "alcyxob/gym-manager/internal/repository/mongo"
	"alcyxob/gym-manager/internal/service"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ensureIndexesCommand = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create MongoDB indexes and exit",
	Run: func(_ *cobra.Command, _ []string) {
		a, err := newApp(resolveConfig())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongorepo.EnsureIndexes(ctx, a.db, a.logger)
	},
}

var dashboardGymID string

var dashboardCommand = &cobra.Command{
	Use:   "dashboard",
	Short: "Print a gym's dashboard as seen by its owner",
	RunE: func(_ *cobra.Command, _ []string) error {
		gymID, err := primitive.ObjectIDFromHex(dashboardGymID)
		if err != nil {
			return errors.Wrap(err, "invalid --gym")
		}

		a, err := newApp(resolveConfig())
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.wireServices(ctx); err != nil {
			return err
		}

		gym, err := a.repos.gyms.GetByID(ctx, gymID)
		if err != nil {
			return errors.Wrap(err, "unable to load gym")
		}
		owner, err := a.repos.users.GetByID(ctx, gym.Owner)
		if err != nil {
			return errors.Wrap(err, "unable to load gym owner")
		}

		d, err := a.services.Analytics.ComputeDashboard(ctx, owner, gymID)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s), generated %s\n\n", gym.Name, gym.Settings.Currency, d.GeneratedAt.Format(time.RFC3339))
		renderDashboard(os.Stdout, d)
		return nil
	},
}

func init() {
	dashboardCommand.Flags().StringVar(&dashboardGymID, "gym", "", "gym id")
	_ = dashboardCommand.MarkFlagRequired("gym")
}

func renderDashboard(w io.Writer, d *service.Dashboard) {
	stats := tablewriter.NewWriter(w)
	stats.SetHeader([]string{"Members", "Count"})
	for _, row := range []struct {
		name  string
		count int
	}{
		{"Total", d.Stats.TotalMembers},
		{"Active", d.Stats.ActiveMembers},
		{"Expired", d.Stats.ExpiredMembers},
		{"Frozen", d.Stats.FrozenMembers},
		{"With dues", d.Stats.DueMembers},
		{"Expiring today", d.Stats.ExpiringToday},
		{"Expiring soon", d.Stats.ExpiringSoon},
		{"Birthdays today", d.Stats.BirthdayToday},
	} {
		stats.Append([]string{row.name, strconv.Itoa(row.count)})
	}
	stats.Render()
	fmt.Fprintln(w)

	revenue := tablewriter.NewWriter(w)
	revenue.SetHeader([]string{"Revenue today", "Amount"})
	revenue.Append([]string{"Collected", d.Revenue.MoneyCollectedToday.String()})
	revenue.Append([]string{"Sales", d.Revenue.TodaySales.String()})
	revenue.Append([]string{"Admissions", d.Revenue.TodayAdmissions.String()})
	revenue.Append([]string{"Renewals", d.Revenue.TodayRenewals.String()})
	revenue.Append([]string{"Refunds", d.Revenue.RefundsToday.String()})
	for mode, amount := range d.Revenue.PaymentModes {
		revenue.Append([]string{"  " + string(mode), amount.String()})
	}
	revenue.Render()
	fmt.Fprintln(w)

	recent := tablewriter.NewWriter(w)
	recent.SetHeader([]string{"Date", "Member", "Type", "Mode", "Amount"})
	for _, t := range d.RecentTransactions {
		recent.Append([]string{
			t.TransactionDate.Format("2006-01-02"),
			t.MemberCode + " " + t.MemberName,
			string(t.TransactionType),
			string(t.PaymentMode),
			t.Amount.String(),
		})
	}
	recent.Render()
}
