package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/chatterbox-im/chatterbox/internal/client"
	"github.com/chatterbox-im/chatterbox/internal/models"
	"github.com/chatterbox-im/chatterbox/pkg/util"
)

func getClient(ctx *ishell.Context) *client.Client {
	c, ok := ctx.Get("client").(*client.Client)
	if !ok {
		ctx.Println("not logged in; run login first")
		return nil
	}
	return c
}

func login(ctx *ishell.Context) {
	config, ok := ctx.Get("config").(*Config)
	if !ok {
		log.Panic("no config exists")
	}

	ctx.Print("enter your user id: ")
	userID := ctx.ReadLine()

	ctx.Print("enter your session token: ")
	token := ctx.ReadLine()

	config.UserID = userID
	config.Token = token
	if err := saveConfig(config); err != nil {
		ctx.Println(err)
	}

	c := client.New(config.Host, config.Token, config.UserID)
	ctx.Set("client", c)
	go func() {
		if err := c.Connect(context.Background()); err != nil {
			fmt.Println("socket closed:", err)
		}
	}()
}

func listUsers(ctx *ishell.Context) {
	c := getClient(ctx)
	if c == nil {
		return
	}

	if _, err := c.Users(context.Background()); err != nil {
		ctx.Println(err)
		return
	}

	rows := util.ConvertList(c.Store().Sidebar(), formatSidebarRow)
	ctx.Println("Contacts:")
	for _, row := range rows {
		ctx.Println(row)
	}
}

func formatSidebarRow(u client.SidebarUser) string {
	marker := " "
	if u.Online {
		marker = "*"
	}
	row := fmt.Sprintf("%s %s (%s)", marker, u.User.Name, u.User.ID.Hex())
	if u.Unread > 0 {
		row += fmt.Sprintf(" [%d unread]", u.Unread)
	}
	if u.LastMessage != nil {
		preview := u.LastMessage.Text
		if preview == "" {
			preview = "[media]"
		}
		row += " - " + preview
	}
	return row
}

func openConversation(ctx *ishell.Context) {
	c := getClient(ctx)
	if c == nil {
		return
	}

	ctx.Print("enter the user id: ")
	peerID := ctx.ReadLine()

	msgs, err := c.OpenConversation(context.Background(), peerID)
	if err != nil {
		ctx.Println(err)
		return
	}
	for i := range msgs {
		printMessage(ctx, c, &msgs[i])
	}
	c.MarkSeen(context.Background())
}

func showMessages(ctx *ishell.Context) {
	c := getClient(ctx)
	if c == nil {
		return
	}

	msgs := c.Store().Messages()
	for i := range msgs {
		printMessage(ctx, c, &msgs[i])
	}
}

func printMessage(ctx *ishell.Context, c *client.Client, msg *models.Message) {
	who := msg.SenderID
	if who == c.Store().SelfID() {
		who = "me"
	}
	line := fmt.Sprintf("[%s] %s: %s", msg.ID.Hex(), who, msg.Text)
	if url := msg.MediaURL(); url != "" {
		line += " <" + url + ">"
	}
	if msg.IsEdited {
		line += " (edited)"
	}
	line += " [" + string(msg.Status) + "]"
	ctx.Println(line)
}

func sendMessage(ctx *ishell.Context) {
	c := getClient(ctx)
	if c == nil {
		return
	}

	peerID := c.Store().ActivePeer()
	if peerID == "" {
		ctx.Println("no open conversation; run open first")
		return
	}

	ctx.Print("BODY: ")
	text := ctx.ReadLine()

	if _, err := c.Send(context.Background(), peerID, text, ""); err != nil {
		ctx.Println(err)
	}
}

func sendFile(ctx *ishell.Context) {
	c := getClient(ctx)
	if c == nil {
		return
	}

	peerID := c.Store().ActivePeer()
	if peerID == "" {
		ctx.Println("no open conversation; run open first")
		return
	}

	ctx.Print("file path: ")
	path := ctx.ReadLine()
	ctx.Print("caption (optional): ")
	text := ctx.ReadLine()

	dataURI, err := fileToDataURI(path)
	if err != nil {
		ctx.Println(err)
		return
	}

	if _, err := c.Send(context.Background(), peerID, text, dataURI); err != nil {
		ctx.Println(err)
	}
}

func editMessage(ctx *ishell.Context) {
	c := getClient(ctx)
	if c == nil {
		return
	}

	ctx.Print("enter the message id: ")
	id := ctx.ReadLine()
	ctx.Print("new text: ")
	text := ctx.ReadLine()

	if _, err := c.Edit(context.Background(), id, text); err != nil {
		ctx.Println(err)
	}
}

func deleteMessage(ctx *ishell.Context) {
	c := getClient(ctx)
	if c == nil {
		return
	}

	ctx.Print("enter the message id: ")
	id := ctx.ReadLine()
	ctx.Print("delete for (me/everyone): ")
	scope := models.DeleteScope(strings.TrimSpace(ctx.ReadLine()))

	if err := c.Delete(context.Background(), id, scope); err != nil {
		ctx.Println(err)
	}
}

func updateProfile(ctx *ishell.Context) {
	c := getClient(ctx)
	if c == nil {
		return
	}

	ctx.Print("image path: ")
	path := ctx.ReadLine()

	dataURI, err := fileToDataURI(path)
	if err != nil {
		ctx.Println(err)
		return
	}
	if err := c.UpdateProfilePic(dataURI); err != nil {
		ctx.Println(err)
	}
}

func setHost(ctx *ishell.Context) {
	config, ok := ctx.Get("config").(*Config)
	if !ok {
		log.Panic("no config exists")
	}

	ctx.Print("Enter the host to communicate with: ")
	config.Host = ctx.ReadLine()
	if err := saveConfig(config); err != nil {
		log.Panic(err)
	}
}

func showConfig(ctx *ishell.Context) {
	config, ok := ctx.Get("config").(*Config)
	if !ok {
		log.Panic("no config exists")
	}

	ctx.Printf("Host: %s\n", config.Host)
	ctx.Printf("User ID: %s\n", config.UserID)
	ctx.Printf("Token: %s\n", config.Token)
}

func fileToDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		return "", fmt.Errorf("cannot determine content type for %s", path)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return "data:" + contentType + ";base64," + encoded, nil
}
