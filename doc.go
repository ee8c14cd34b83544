// Package onesecmail provides a Go client for the 1secmail disposable
// email service.
//
// The client creates or opens mailboxes, lists and reads their messages,
// downloads attachments, clears mailboxes and watches them for new
// messages by polling.
//
// Basic usage:
//
//	client, err := onesecmail.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Create a mailbox on a random address
//	mailbox, err := client.CreateMailbox(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Send mail to", mailbox.EmailAddress())
//
//	// Wait for a message
//	msg, err := mailbox.WaitForMessage(ctx, onesecmail.WithSubject("Welcome"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	full, err := msg.FetchFullMessage(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(full.TextBody)
//
// # Watching
//
// StartPolling lists the mailbox at a fixed cadence. Each message is
// reported once, in ascending id order, to OnNewMessage subscribers and
// Watch channels. Failed polls are reported to OnError subscribers and
// polling continues until StopPolling.
//
//	mailbox.OnNewMessage(func(msg *onesecmail.ShortMessage) {
//	    fmt.Println("New message:", msg.Subject)
//	})
//	mailbox.OnError(func(err error) {
//	    log.Println("poll failed:", err)
//	})
//	mailbox.StartPolling(5 * time.Second)
//	defer mailbox.StopPolling()
//
// # Errors
//
// Failed HTTP exchanges are *TransportError, unexpected response bodies
// are *ValidationError and out-of-range arguments are *RangeError. All of
// them implement OneSecMailError and match the corresponding sentinel with
// errors.Is.
package onesecmail
