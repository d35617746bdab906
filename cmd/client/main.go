package main

import (
	"context"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/chatterbox-im/chatterbox/internal/client"
)

func main() {
	config, err := readConfig()
	if err != nil {
		log.Println("no config file found; creating a new one")
		config, err = createConfig()
		if err != nil {
			log.Fatal("unable to create new config")
		}
	}

	shell := ishell.New()
	shell.Set("config", config)

	if config.Token != "" && config.UserID != "" {
		c := client.New(config.Host, config.Token, config.UserID)
		shell.Set("client", c)
		connect(shell, c)
	}

	shell.AddCmd(&ishell.Cmd{
		Name: "login",
		Help: "store a session token and connect",
		Func: login,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "users",
		Help: "list contacts with presence and unread counts",
		Func: listUsers,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "open",
		Help: "open a conversation",
		Func: openConversation,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "send",
		Help: "send a message in the open conversation",
		Func: sendMessage,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "sendfile",
		Help: "send a media file in the open conversation",
		Func: sendFile,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "edit",
		Help: "edit one of your messages",
		Func: editMessage,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "delete",
		Help: "delete a message for yourself or everyone",
		Func: deleteMessage,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "messages",
		Help: "show the open conversation",
		Func: showMessages,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "profile",
		Help: "update your profile picture",
		Func: updateProfile,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "host",
		Help: "sets the host",
		Func: setHost,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "config",
		Help: "shows the current config",
		Func: showConfig,
	})

	shell.Run()
}

func connect(shell *ishell.Shell, c *client.Client) {
	go func() {
		if err := c.Connect(context.Background()); err != nil {
			shell.Println("socket closed:", err)
		}
	}()
}
