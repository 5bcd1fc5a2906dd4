package dispatch

import "slices"

// The functions below keep the registry's three tables consistent. All of
// them must be called with r.mu held, except the callbacks returned by
// receiverCollected and senderCollected, which take the lock themselves.

// watchReceiver makes sure recv has a back-reference entry and, for a weak
// connection, a collection callback. It returns ErrCollected if recv can no
// longer be invoked, leaving the tables as they were.
func (r *Registry) watchReceiver(recv *Receiver, weakly bool) error {
	if !recv.Alive() {
		return ErrCollected
	}
	b, ok := r.backRefs[recv.id]
	if !ok {
		b = &backRef{}
		r.backRefs[recv.id] = b
	}
	if weakly && !b.watched {
		cleanup, ok := recv.onCollect(r.receiverCollected(recv.id))
		if !ok {
			r.dropIdleBackRef(recv.id)
			return ErrCollected
		}
		b.cleanup = cleanup
		b.watched = true
	}
	return nil
}

// trackSender installs a collection callback for a WeakRef sender the first
// time it is connected. It returns ErrCollected if the sender is already gone.
func (r *Registry) trackSender(sender any) error {
	if _, ok := r.senders[sender]; ok {
		return nil
	}
	c, ok := sender.(collectable)
	if !ok {
		return nil
	}
	cleanup, ok := c.onCollect(r.senderCollected(sender))
	if !ok {
		return ErrCollected
	}
	r.senders[sender] = cleanup
	return nil
}

// rememberSender records that the receiver id has a connection under sender.
// watchReceiver must have been called first.
func (r *Registry) rememberSender(id any, sender any) {
	b := r.backRefs[id]
	if !slices.Contains(b.senders, sender) {
		b.senders = append(b.senders, sender)
	}
}

// dropIdleBackRef removes the back-reference entry of id if it lists no
// sender.
func (r *Registry) dropIdleBackRef(id any) {
	if b, ok := r.backRefs[id]; ok && len(b.senders) == 0 {
		b.cleanup.Stop()
		delete(r.backRefs, id)
	}
}

// forgetSender removes sender from the back-references of id, dropping the
// entry and its callback when no sender is left.
func (r *Registry) forgetSender(id any, sender any) {
	b, ok := r.backRefs[id]
	if !ok {
		return
	}
	b.senders = slices.DeleteFunc(b.senders, func(s any) bool { return s == sender })
	if len(b.senders) == 0 {
		b.cleanup.Stop()
		delete(r.backRefs, id)
	}
}

// removeSender drops every connection made for sender along with the
// back-references they induced.
func (r *Registry) removeSender(sender any) {
	for _, s := range r.connections[sender] {
		for _, h := range s.refs {
			r.forgetSender(h.id, sender)
		}
	}
	delete(r.connections, sender)
	if c, ok := r.senders[sender]; ok {
		c.Stop()
		delete(r.senders, sender)
	}
}

// removeReceiver drops every connection of id, under every sender it was
// connected for.
func (r *Registry) removeReceiver(id any) {
	b, ok := r.backRefs[id]
	if !ok {
		return
	}
	delete(r.backRefs, id)
	for _, sender := range b.senders {
		for signal, s := range r.connections[sender] {
			if i := s.index(id); i >= 0 {
				s.remove(i)
			}
			r.prune(sender, signal)
		}
	}
}

// receiverCollected returns the callback run after a weakly connected
// receiver, or the object of a method receiver, is collected.
func (r *Registry) receiverCollected(id any) func() {
	gen := r.gen
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if gen != r.gen {
			return
		}
		r.removeReceiver(id)
		r.logger.Debug("Removed collected receiver.")
	}
}

// senderCollected returns the callback run after a WeakRef sender is
// collected.
func (r *Registry) senderCollected(sender any) func() {
	gen := r.gen
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if gen != r.gen {
			return
		}
		r.removeSender(sender)
		r.logger.Debug("Removed collected sender.")
	}
}
