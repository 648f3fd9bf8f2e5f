package engine

import "errors"

// Validation errors are reported to the issuing actor only and never mutate
// session state. Anything else (unknown tile ids and the like) is a broken
// contract and fails the command loudly.
var (
	ErrNotStarted        = errors.New("game has not started")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrEnded             = errors.New("game is over")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrRollNotAllowed    = errors.New("you cannot roll right now")
	ErrRollOwed          = errors.New("you must roll the dice first")
	ErrRerollOwed        = errors.New("you rolled doubles and must roll again")
	ErrInDebt            = errors.New("you must resolve your debt first")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrRoomFull          = errors.New("room is full")
	ErrNotEnoughPlayers  = errors.New("need at least 2 players")
	ErrNotHost           = errors.New("only the host can do that")

	ErrTileNotBuyable  = errors.New("tile cannot be bought")
	ErrTileOwned       = errors.New("tile already has an owner")
	ErrNotYourTile     = errors.New("you do not own that tile")
	ErrNoMonopoly      = errors.New("you must own the whole group to build")
	ErrUnevenBuild     = errors.New("buildings must stay even across the group")
	ErrMaxBuildings    = errors.New("tile already carries the maximum buildings")
	ErrNoBuildings     = errors.New("tile has no buildings")
	ErrHasBuildings    = errors.New("sell the buildings first")
	ErrTileMortgaged   = errors.New("tile is mortgaged")
	ErrNotMortgaged    = errors.New("tile is not mortgaged")
	ErrNotJailed       = errors.New("you are not in jail")
	ErrNoJailCard      = errors.New("you have no get-out-of-jail card")
	ErrAlreadyBankrupt = errors.New("player is already bankrupt")

	ErrUnknownTrade    = errors.New("unknown trade")
	ErrTradeNotPending = errors.New("trade is no longer pending")
	ErrEmptyTrade      = errors.New("trade has no content")
	ErrNotTradeParty   = errors.New("you are not part of that trade")
	ErrTradeOwnership  = errors.New("trade references tiles the parties do not own")
	ErrTradeBuildings  = errors.New("traded tiles cannot carry buildings")

	ErrAuctionRunning = errors.New("an auction is already running")
	ErrNoAuction      = errors.New("no auction is running")
	ErrBidTooLow      = errors.New("bid must exceed the current bid")
	ErrNotEligible    = errors.New("you are not part of this auction")

	ErrNotDisconnected = errors.New("player is not disconnected")

	// ErrUnknownTile is an invariant violation, not a validation error: a
	// command referenced a tile id outside the board.
	ErrUnknownTile = errors.New("tile does not exist")
)
