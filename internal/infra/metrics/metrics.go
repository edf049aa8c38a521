package metrics

import "sync/atomic"

type Counters struct {
	NotificationsAccepted uint64
	NotificationsRejected uint64
	PaymentsCaptured      uint64
	PaymentsRefunded      uint64
	OrdersCreated         uint64
	InitiationsFailed     uint64
	ProcessorErrors       uint64
}

func (c *Counters) IncAccepted() {
	atomic.AddUint64(&c.NotificationsAccepted, 1)
}

func (c *Counters) IncRejected() {
	atomic.AddUint64(&c.NotificationsRejected, 1)
}

func (c *Counters) IncCaptured() {
	atomic.AddUint64(&c.PaymentsCaptured, 1)
}

func (c *Counters) IncRefunded() {
	atomic.AddUint64(&c.PaymentsRefunded, 1)
}

func (c *Counters) IncOrdersCreated() {
	atomic.AddUint64(&c.OrdersCreated, 1)
}

func (c *Counters) IncInitiationsFailed() {
	atomic.AddUint64(&c.InitiationsFailed, 1)
}

func (c *Counters) IncProcessorErrors() {
	atomic.AddUint64(&c.ProcessorErrors, 1)
}
