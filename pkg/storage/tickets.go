package storage

import (
	"sort"
	"strings"

	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/types"
)

// ListTickets returns every ticket in creation order
func (s *Store) ListTickets() []types.SupportTicket {
	var tickets []types.SupportTicket
	s.view(func() {
		tickets = readSlice[types.SupportTicket](s, KeyTickets)
	})
	return tickets
}

// TicketsForReview orders tickets for the operator queue: pending before
// resolved, newest first within each group.
func (s *Store) TicketsForReview() []types.SupportTicket {
	tickets := s.ListTickets()
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i], tickets[j]
		if a.IsResolved() != b.IsResolved() {
			return !a.IsResolved()
		}
		return a.Timestamp.After(b.Timestamp)
	})
	return tickets
}

// TicketsByUser returns the tickets a user opened, matching names
// case-insensitively
func (s *Store) TicketsByUser(userName string) []types.SupportTicket {
	name := strings.TrimSpace(userName)
	var mine []types.SupportTicket
	for _, t := range s.ListTickets() {
		if strings.EqualFold(strings.TrimSpace(t.UserName), name) {
			mine = append(mine, t)
		}
	}
	return mine
}

// CreateTicket opens a pending ticket
func (s *Store) CreateTicket(userName, question string) (types.SupportTicket, error) {
	ticket := types.SupportTicket{
		ID:       s.newID(),
		UserName: userName,
		Question: question,
		Status:   types.TicketStatusPending,
	}

	err := s.mutate("ticket.create", events.ChannelGeneral, events.EventTicketCreated, func() (bool, error) {
		tickets, err := loadSlice[types.SupportTicket](s, KeyTickets)
		if err != nil {
			return false, err
		}
		ticket.Timestamp = s.now()
		if err := s.save(KeyTickets, append(tickets, ticket)); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return types.SupportTicket{}, err
	}
	return ticket, nil
}

// ResolveTicket answers a ticket. An unknown id is a no-op.
func (s *Store) ResolveTicket(id, answer string) error {
	return s.mutate("ticket.resolve", events.ChannelGeneral, events.EventTicketResolved, func() (bool, error) {
		tickets, err := loadSlice[types.SupportTicket](s, KeyTickets)
		if err != nil {
			return false, err
		}
		idx := findTicket(tickets, id)
		if idx < 0 {
			return false, nil
		}
		tickets[idx].Answer = &answer
		tickets[idx].Status = types.TicketStatusResolved
		return true, s.save(KeyTickets, tickets)
	})
}

// DeleteTicket removes a ticket. An unknown id is a no-op.
func (s *Store) DeleteTicket(id string) error {
	return s.mutate("ticket.delete", events.ChannelGeneral, events.EventTicketDeleted, func() (bool, error) {
		tickets, err := loadSlice[types.SupportTicket](s, KeyTickets)
		if err != nil {
			return false, err
		}
		idx := findTicket(tickets, id)
		if idx < 0 {
			return false, nil
		}
		tickets = append(tickets[:idx], tickets[idx+1:]...)
		return true, s.save(KeyTickets, tickets)
	})
}

func findTicket(tickets []types.SupportTicket, id string) int {
	for i, t := range tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}
