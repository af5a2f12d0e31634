package internal

// Methods (Room Struct)
func (r *Room) GetSeatByIndex(index int) *Seat {
	if index < 0 || index >= len(r.Seats) {
		return nil
	}

	return r.Seats[index]
}

func (r *Room) CurrentSeat() *Seat {
	return r.GetSeatByIndex(r.CurrentIndex)
}

// CurrentPlayer returns the slot whose turn it is, or NoPlayer.
func (r *Room) CurrentPlayer() int {
	if seat := r.CurrentSeat(); seat != nil {
		return seat.Slot
	}
	return NoPlayer
}

func (r *Room) GetNextTurnIndex() int {
	if len(r.Seats) == 0 {
		return -1
	}

	return (r.CurrentIndex + 1) % len(r.Seats)
}

func (r *Room) IndexOfSlot(slot int) int {
	for i, seat := range r.Seats {
		if seat.Slot == slot {
			return i
		}
	}
	return -1
}

func (r *Room) GetPlayerCount() int {
	return len(r.Seats)
}

func (r *Room) IsFull() bool {
	return r.GetPlayerCount() >= MaxPlayersPerRoom
}

func (r *Room) CanStartGame() bool {
	return r.GetPlayerCount() >= MinPlayersToStart
}

// PlayerSlots lists seated players in join order.
func (r *Room) PlayerSlots() []int {
	slots := make([]int, 0, len(r.Seats))
	for _, seat := range r.Seats {
		slots = append(slots, seat.Slot)
	}
	return slots
}

func (r *Room) TurnState() TurnState {
	switch {
	case r.State.Stopped || r.State.TilesLeft == 0:
		return TurnGameOver
	case r.State.SelectionAllowed:
		return TurnAwaitingSelection
	default:
		return TurnAwaitingRoll
	}
}
